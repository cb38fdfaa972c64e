package lexer

import (
	"signcheck/internal/diag"
	"signcheck/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b1010, 0xFF_FF. Only integers exist in
// fixtures; a trailing identifier character makes the literal malformed.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	digit := isDec
	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			lx.cursor.Advance(2)
			digit = isHex
		case 'b', 'B':
			lx.cursor.Advance(2)
			digit = isBin
		}
	}
	for digit(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}

	bad := false
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
		bad = true
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if !bad {
		if _, err := ParseInt(text); err != nil {
			bad = true
		}
	}
	if bad {
		lx.errLex(diag.LexBadNumber, sp, "malformed integer literal "+text)
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	return token.Token{Kind: token.IntLit, Span: sp, Text: text}
}
