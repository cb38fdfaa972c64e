package parser

import (
	"strings"

	"signcheck/internal/diag"
	"signcheck/internal/qual"
	"signcheck/internal/source"
	"signcheck/internal/token"
)

// annotatedType is `[@qualifier] [TypeName]`; at least one part must be present.
type annotatedType struct {
	span      source.Span
	q         qual.Qualifier
	annotated bool
}

func (p *Parser) parseAnnotatedType(ctx string) (annotatedType, bool) {
	start := p.lx.Peek().Span
	var t annotatedType
	seen := false
	if p.at(token.At) {
		// неизвестный квалификатор уже зарепорчен; считаем тип неаннотированным
		t.q, t.annotated = p.parseAnnotation()
		seen = true
	}
	if p.at(token.Ident) {
		p.advance() // имя типа чекеру не важно
		seen = true
	}
	if !seen {
		p.err(diag.SynExpectType, "expected type "+ctx+", got "+describe(p.lx.Peek()))
		return t, false
	}
	t.span = p.spanFrom(start)
	return t, true
}

// parseAnnotation parses '@' Ident into a qualifier.
func (p *Parser) parseAnnotation() (qual.Qualifier, bool) {
	at := p.advance()
	if !p.at(token.Ident) {
		p.errAt(diag.SynExpectType, at.Span, "expected qualifier name after '@'")
		return qual.UnknownSignedness, false
	}
	name := p.advance()
	q, ok := qual.Parse(name.Text)
	if !ok {
		known := make([]string, 0, len(qual.All))
		for _, k := range qual.All {
			known = append(known, k.Annotation())
		}
		p.reportBuilder(diag.SynUnknownQualifier, at.Span.Cover(name.Span), "unknown signedness qualifier '@"+name.Text+"'").
			WithNote(name.Span, "known qualifiers: "+strings.Join(known, ", ")).
			Emit()
		return qual.UnknownSignedness, false
	}
	return q, true
}
