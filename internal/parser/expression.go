package parser

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/qual"
	"signcheck/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr реализует Pratt parsing для бинарных операторов
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseCastExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		prec, op := getBinaryOperatorPrec(p.lx.Peek().Kind)
		if prec < 0 || prec < minPrec {
			return left, true
		}
		p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		sp := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(sp, op, left, right)
	}
}

// parseCastExpr: unary ('to' ['!'] '@' qualifier [TypeName])*
// Cast binds tighter than any binary operator: `a + b to @unsigned` casts b.
func (p *Parser) parseCastExpr() (ast.ExprID, bool) {
	value, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for p.at(token.KwTo) {
		kw := p.advance()
		kwSpan, kwText := kw.Span, "to"
		acknowledged := false
		if bang := p.lx.Peek(); bang.Kind == token.Bang && bang.Span.Start == kw.Span.End {
			p.advance()
			kwSpan, kwText = kwSpan.Cover(bang.Span), "to!"
			acknowledged = true
		}
		if !p.at(token.At) {
			p.err(diag.SynExpectType, "expected '@qualifier' after '"+kwText+"'")
			return ast.NoExprID, false
		}
		target, annotated := p.parseAnnotation()
		if !annotated {
			target = qual.UnknownSignedness
		}
		if p.at(token.Ident) {
			p.advance() // имя типа
		}
		sp := p.arenas.Exprs.Get(value).Span.Cover(p.lastSpan)
		value = p.arenas.Exprs.NewCast(sp, value, target, acknowledged, kwSpan)
	}
	return value, true
}

// parseUnaryExpr обрабатывает унарные операторы (префиксы)
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	if op, ok := unaryOps[tok.Kind]; ok {
		p.advance()
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		sp := tok.Span.Cover(p.arenas.Exprs.Get(operand).Span)
		return p.arenas.Exprs.NewUnary(sp, op, operand), true
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, err := lexer.ParseInt(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadNumber, tok.Span, "malformed integer literal "+tok.Text)
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLiteral(tok.Span, tok.Text, v), true

	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseCallExpr(tok)
		}
		sym, ok := p.resolve(tok.Text)
		if !ok {
			p.errAt(diag.SynUnresolvedName, tok.Span, "undeclared name '"+tok.Text+"'")
		}
		return p.arenas.Exprs.NewIdent(tok.Span, tok.Text, sym), true

	case token.LParen:
		open := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'", func(b *diag.ReportBuilder) {
			b.WithNote(open.Span, "parenthesis opened here")
		}); !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(p.spanFrom(open.Span), inner), true

	case token.Invalid:
		// лексер уже зарепортил
		p.advance()
		return ast.NoExprID, false

	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return ast.NoExprID, false
	}
}

func (p *Parser) parseCallExpr(callee token.Token) (ast.ExprID, bool) {
	open := p.advance()
	var args []ast.ExprID
	for !p.at(token.RParen) {
		arg, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close call", func(b *diag.ReportBuilder) {
		b.WithNote(open.Span, "call opened here")
	}); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCall(p.spanFrom(callee.Span), callee.Text, callee.Span, args), true
}
