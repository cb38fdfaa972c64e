package parser

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/token"
)

// parseFn: 'fn' Ident '(' params ')' ['->' type] block
func (p *Parser) parseFn() (ast.UnitID, bool) {
	fnTok := p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return ast.NoUnitID, false
	}
	unit := p.arenas.NewUnit(name.Text, fnTok.Span, name.Span)
	if prev, found := p.arenas.LookupUnit(name.Text); found && prev != unit {
		p.reportBuilder(diag.SynDuplicateName, name.Span, "function '"+name.Text+"' is already declared").
			WithNote(p.arenas.Unit(prev).NameSpan, "previous declaration").
			Emit()
	}

	p.unit = unit
	p.scopes = p.scopes[:0]
	p.loopDepth = 0
	p.pushScope()
	defer p.popScope()

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return unit, false
	}
	if !p.parseParams(unit) {
		return unit, false
	}

	if p.at(token.Arrow) {
		p.advance()
		ret, ok := p.parseAnnotatedType("after '->'")
		if !ok {
			return unit, false
		}
		p.arenas.SetResult(unit, ret.span, ret.q, ret.annotated)
	}

	body, ok := p.parseBlock()
	if !ok {
		if !p.at(token.LBrace) {
			p.err(diag.SynUnexpectedToken, "expected function body, got "+describe(p.lx.Peek()))
		}
		return unit, false
	}
	p.arenas.SetBody(unit, body)
	p.arenas.Unit(unit).Span = p.spanFrom(fnTok.Span)
	return unit, true
}

func (p *Parser) parseParams(unit ast.UnitID) bool {
	for !p.at(token.RParen) {
		name, ok := p.parseIdent()
		if !ok {
			return false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' after parameter name"); !ok {
			return false
		}
		typ, ok := p.parseAnnotatedType("for parameter '" + name.Text + "'")
		if !ok {
			return false
		}
		sym := p.arenas.NewParam(unit, name.Text, name.Span.Cover(typ.span), typ.q, typ.annotated)
		p.declare(name, sym)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters")
	return ok
}
