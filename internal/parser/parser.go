package parser

import (
	"slices"

	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/source"
	"signcheck/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   source.FileID
	Units  []ast.UnitID
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     source.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики

	unit      ast.UnitID
	scopes    []scope
	loopDepth int
}

// ParseFile разбирает один файл. Identifiers are
// resolved to symbols while parsing; calls are resolved later by name.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:     lx,
		arenas: arenas,
		file:   arenas.File,
		opts:   opts,
	}
	p.lastSpan = source.Span{File: p.file}

	p.parseItems()
	return Result{
		File:   p.file,
		Units:  arenas.UnitIDs(),
		Errors: p.opts.CurrentErrors,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems: основной цикл верхнего уровня: пока не EOF, parseFn.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		if p.at(token.KwFn) {
			if _, ok := p.parseFn(); ok {
				continue
			}
		} else {
			p.err(diag.SynUnexpectedToken, "expected 'fn', got "+describe(p.lx.Peek()))
			p.advance()
		}
		p.resyncTop()
	}
}

// resyncTop: прокручиваем до следующего 'fn' или EOF.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.KwFn)
}

// resyncUntil skips tokens until one of kinds (not consumed) or EOF.
func (p *Parser) resyncUntil(kinds ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(kinds...) {
		p.advance()
	}
}

// parseIdent ожидает Ident; на ошибке: SynExpectIdentifier.
func (p *Parser) parseIdent() (token.Token, bool) {
	if p.at(token.Ident) {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.lx.Peek()))
	return token.Token{}, false
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.Invalid:
		return "\"" + tok.Text + "\""
	default:
		return "'" + tok.Kind.String() + "'"
	}
}
