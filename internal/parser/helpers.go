package parser

import (
	"signcheck/internal/diag"
	"signcheck/internal/source"
	"signcheck/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan: для EOF указываем сразу после последнего токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string, decorate ...func(*diag.ReportBuilder)) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	b := p.reportBuilder(code, sp, msg)
	for _, fn := range decorate {
		fn(b)
	}
	b.Emit()
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) {
	p.errAt(code, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.reportBuilder(code, sp, msg).Emit()
}

// reportBuilder returns nil once MaxErrors is reached; builder methods are nil-safe.
func (p *Parser) reportBuilder(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	enough := p.opts.Enough()
	p.opts.CurrentErrors++
	if enough || p.opts.Reporter == nil {
		return nil // достигли максимального количества ошибок
	}
	return diag.ReportError(p.opts.Reporter, code, sp, msg)
}

// spanFrom covers start through the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.lastSpan)
}

func endOf(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}
