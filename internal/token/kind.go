package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit represents a decimal, hex or binary integer literal.
	IntLit

	KwFn       // fn
	KwLet      // let
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwTo       // to

	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Amp     // &
	Pipe    // |
	Caret   // ^
	Tilde   // ~
	Bang    // !
	Shl     // <<
	Shr     // >>
	Ushr    // >>>
	AndAnd  // &&
	OrOr    // ||
	EqEq    // ==
	BangEq  // !=
	Lt      // <
	LtEq    // <=
	Gt      // >
	GtEq    // >=

	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	UshrAssign    // >>>=

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Colon     // :
	Semicolon // ;
	Comma     // ,
	Arrow     // ->
	At        // @
)

var kindText = [...]string{
	Invalid:       "invalid",
	EOF:           "end of file",
	Ident:         "identifier",
	IntLit:        "integer literal",
	KwFn:          "fn",
	KwLet:         "let",
	KwIf:          "if",
	KwElse:        "else",
	KwWhile:       "while",
	KwBreak:       "break",
	KwContinue:    "continue",
	KwReturn:      "return",
	KwTo:          "to",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	Tilde:         "~",
	Bang:          "!",
	Shl:           "<<",
	Shr:           ">>",
	Ushr:          ">>>",
	AndAnd:        "&&",
	OrOr:          "||",
	EqEq:          "==",
	BangEq:        "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	UshrAssign:    ">>>=",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	Colon:         ":",
	Semicolon:     ";",
	Comma:         ",",
	Arrow:         "->",
	At:            "@",
}

func (k Kind) String() string {
	if int(k) < len(kindText) {
		return kindText[k]
	}
	return "invalid"
}
