package parser

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/token"
)

type scope map[string]ast.SymbolID

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, scope{})
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// declare binds name in the innermost scope. Redeclaring in the same scope
// is reported but still shadows, so later uses see the newest symbol.
func (p *Parser) declare(name token.Token, sym ast.SymbolID) {
	top := p.scopes[len(p.scopes)-1]
	if prev, ok := top[name.Text]; ok {
		p.reportBuilder(diag.SynDuplicateName, name.Span, "'"+name.Text+"' is already declared in this scope").
			WithNote(p.arenas.Symbol(prev).Span, "previous declaration").
			Emit()
	}
	top[name.Text] = sym
}

func (p *Parser) resolve(name string) (ast.SymbolID, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if sym, ok := p.scopes[i][name]; ok {
			return sym, true
		}
	}
	return ast.NoSymbolID, false
}
