package lexer

import "signcheck/internal/diag"

// skipTrivia пропускает пробелы, переводы строк, // и /* */ комментарии.
// Block comments nest.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.skipBlockComment()
		default:
			return
		}
	}
}

func (lx *Lexer) skipBlockComment() {
	start := lx.cursor.Mark()
	lx.cursor.Advance(2)
	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		switch {
		case lx.cursor.Peek() == '/' && lx.cursor.PeekAt(1) == '*':
			lx.cursor.Advance(2)
			depth++
		case lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/':
			lx.cursor.Advance(2)
			depth--
		default:
			lx.cursor.Bump()
		}
	}
	if depth > 0 {
		lx.errLex(diag.LexUnterminatedCm, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
}
