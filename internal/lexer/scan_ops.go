package lexer

import (
	"signcheck/internal/diag"
	"signcheck/internal/token"
)

type opSpelling struct {
	text string
	kind token.Kind
}

// Жадность: сначала 4-символьные, затем 3, 2 и 1.
var multiByteOps = []opSpelling{
	{">>>=", token.UshrAssign},
	{">>>", token.Ushr},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"->", token.Arrow},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
}

var singleByteOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'&': token.Amp,
	'|': token.Pipe,
	'^': token.Caret,
	'~': token.Tilde,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
	'=': token.Assign,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	':': token.Colon,
	';': token.Semicolon,
	',': token.Comma,
	'@': token.At,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	for _, op := range multiByteOps {
		if lx.hasPrefix(op.text) {
			lx.cursor.Advance(len(op.text))
			return emit(op.kind)
		}
	}

	ch := lx.cursor.Bump()
	if k, ok := singleByteOps[ch]; ok {
		return emit(k)
	}
	tok := emit(token.Invalid)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character "+quoteRune(rune(ch)))
	return tok
}

func (lx *Lexer) hasPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		if lx.cursor.PeekAt(uint32(i)) != s[i] {
			return false
		}
	}
	return true
}
