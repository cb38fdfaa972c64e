package token

import (
	"signcheck/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is an integer literal.
func (t Token) IsLiteral() bool { return t.Kind == IntLit }

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwTo
}

// IsAssignOp reports whether the token is `=` or a compound assignment.
func (t Token) IsAssignOp() bool {
	return t.Kind >= Assign && t.Kind <= UshrAssign
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
