package parser

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/token"
)

// statement starters used for recovery
var stmtStarters = []token.Kind{
	token.Semicolon, token.RBrace, token.LBrace,
	token.KwLet, token.KwIf, token.KwWhile, token.KwReturn, token.KwBreak, token.KwContinue, token.KwFn,
}

func (p *Parser) parseBlock() (ast.StmtID, bool) {
	if !p.at(token.LBrace) {
		return ast.NoStmtID, false
	}
	openTok := p.advance()
	p.pushScope()
	defer p.popScope()

	var stmtIDs []ast.StmtID
	for !p.at(token.EOF) && !p.at(token.RBrace) && !p.at(token.KwFn) {
		stmtID, ok := p.parseStmt()
		if ok {
			stmtIDs = append(stmtIDs, stmtID)
			continue
		}
		// ошибка при парсинге statement, восстанавливаемся до следующего statement
		p.resyncStatement()
	}

	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block", func(b *diag.ReportBuilder) {
		insert := endOf(p.lastSpan)
		b.WithNote(openTok.Span, "block opened here").
			WithFix("insert '}' to close block", diag.FixEdit{Span: insert, NewText: "}"})
	})
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBlock(openTok.Span.Cover(closeTok.Span), stmtIDs), true
}

func (p *Parser) resyncStatement() {
	before := p.lastSpan
	p.resyncUntil(stmtStarters...)
	if p.at(token.Semicolon) {
		p.advance()
		return
	}
	// гарантируем прогресс, если ошибка случилась прямо на стартере
	if p.lastSpan == before && !p.atOr(token.RBrace, token.EOF, token.KwFn) {
		p.advance()
	}
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwBreak, token.KwContinue:
		return p.parseJumpStmt()
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		tok := p.advance()
		return p.arenas.Stmts.NewBlock(tok.Span, nil), true
	default:
		return p.parseExprStmt()
	}
}

// parseLetStmt: 'let' Ident [':' type] ['=' expr] ';'
// The initializer is parsed before the name is bound.
func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	letTok := p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return ast.NoStmtID, false
	}
	var typ annotatedType
	if p.at(token.Colon) {
		p.advance()
		if typ, ok = p.parseAnnotatedType("for '" + name.Text + "'"); !ok {
			return ast.NoStmtID, false
		}
	}
	value := ast.NoExprID
	if p.at(token.Assign) {
		p.advance()
		if value, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	if !p.expectSemicolon("after let statement") {
		return ast.NoStmtID, false
	}
	sym := p.arenas.NewLocal(p.unit, name.Text, name.Span, typ.q, typ.annotated)
	p.declare(name, sym)
	return p.arenas.Stmts.NewLet(p.spanFrom(letTok.Span), sym, value), true
}

// parseIfStmt: 'if' expr block ['else' (if | block)]
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.expectBlock("after if condition")
	if !ok {
		return ast.NoStmtID, false
	}
	els := ast.NoStmtID
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			els, ok = p.parseIfStmt()
		} else {
			els, ok = p.expectBlock("after 'else'")
		}
		if !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewIf(p.spanFrom(ifTok.Span), cond, then, els), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	p.loopDepth++
	body, ok := p.expectBlock("after while condition")
	p.loopDepth--
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewWhile(p.spanFrom(whileTok.Span), cond, body), true
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()
	value := ast.NoExprID
	if !p.at(token.Semicolon) {
		var ok bool
		if value, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	if !p.expectSemicolon("after return") {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewReturn(p.spanFrom(retTok.Span), value), true
}

func (p *Parser) parseJumpStmt() (ast.StmtID, bool) {
	tok := p.advance()
	if !p.expectSemicolon("after " + tok.Text) {
		return ast.NoStmtID, false
	}
	sp := p.spanFrom(tok.Span)
	if p.loopDepth == 0 {
		// не фатально: оператор всё равно попадёт в AST
		p.errAt(diag.SynBreakOutsideLoop, tok.Span, "'"+tok.Text+"' outside of a loop")
	}
	if tok.Kind == token.KwBreak {
		return p.arenas.Stmts.NewBreak(sp), true
	}
	return p.arenas.Stmts.NewContinue(sp), true
}

// parseExprStmt handles expression statements and (compound) assignments.
func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}

	if tok := p.lx.Peek(); tok.IsAssignOp() {
		p.advance()
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if !p.expectSemicolon("after assignment") {
			return ast.NoStmtID, false
		}
		if _, isIdent := p.arenas.Exprs.Ident(expr); !isIdent {
			p.errAt(diag.SynAssignTarget, p.arenas.Exprs.Get(expr).Span, "only variables can be assigned to")
			return ast.NoStmtID, false
		}
		sp := p.spanFrom(start)
		if tok.Kind == token.Assign {
			return p.arenas.Stmts.NewAssign(sp, expr, value), true
		}
		return p.arenas.Stmts.NewCompoundAssign(sp, compoundAssignOps[tok.Kind], expr, value), true
	}

	if !p.expectSemicolon("after expression") {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewExpr(p.spanFrom(start), expr), true
}

func (p *Parser) expectBlock(ctx string) (ast.StmtID, bool) {
	if !p.at(token.LBrace) {
		p.err(diag.SynUnexpectedToken, "expected '{' "+ctx+", got "+describe(p.lx.Peek()))
		return ast.NoStmtID, false
	}
	return p.parseBlock()
}

func (p *Parser) expectSemicolon(ctx string) bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' "+ctx, func(b *diag.ReportBuilder) {
		b.WithFix("insert ';'", diag.FixEdit{Span: endOf(p.lastSpan), NewText: ";"})
	})
	return ok
}
