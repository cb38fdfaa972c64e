package sema

import (
	"fmt"

	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/flow"
	"signcheck/internal/qual"
	"signcheck/internal/rules"
)

func (c *checker) walkStmt(id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	st := c.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		c.walkBlock(c.builder.Stmts.Block(id))
	case ast.StmtLet:
		c.walkLet(c.builder.Stmts.Let(id))
	case ast.StmtAssign:
		c.walkAssign(c.builder.Stmts.Assign(id))
	case ast.StmtExpr:
		if es := c.builder.Stmts.Expr(id); es != nil {
			c.expr(es.Expr, qual.UnknownSignedness)
		}
	case ast.StmtIf:
		c.walkIf(c.builder.Stmts.If(id))
	case ast.StmtWhile:
		c.walkWhile(c.builder.Stmts.While(id))
	case ast.StmtReturn:
		c.walkReturn(c.builder.Stmts.Return(id))
	case ast.StmtBreak:
		if lf := c.innermostLoop(); lf != nil {
			lf.breaks = append(lf.breaks, c.state.Clone())
		}
		c.state.MarkUnreachable()
	case ast.StmtContinue:
		if lf := c.innermostLoop(); lf != nil {
			lf.continues = append(lf.continues, c.state.Clone())
		}
		c.state.MarkUnreachable()
	}
}

func (c *checker) walkBlock(block *ast.BlockStmt) {
	if block == nil {
		return
	}
	c.pushScope()
	for _, s := range block.Stmts {
		c.walkStmt(s)
	}
	c.popScope()
}

func (c *checker) walkLet(let *ast.LetStmt) {
	if let == nil {
		return
	}
	declared := c.declaredOf(let.Symbol)
	if !let.Value.IsValid() {
		c.declareLocal(let.Symbol)
		c.state.Set(let.Symbol, declared)
		return
	}
	// the initializer cannot see the variable it initializes
	provided := c.expr(let.Value, declared)
	c.declareLocal(let.Symbol)
	if !qual.Accepts(declared, provided) {
		c.report(diag.SgnSubtypeViolation, c.exprSpan(let.Value),
			fmt.Sprintf("cannot initialize '%s' (%s) with a %s value", c.symbolName(let.Symbol), declared, provided)).
			WithQuals(declared, provided).
			WithNote(c.builder.Symbol(let.Symbol).Span, "declared "+declared.Annotation()+" here").
			Emit()
	}
	c.state.Refine(let.Symbol, provided, declared)
}

func (c *checker) walkAssign(as *ast.AssignStmt) {
	if as == nil {
		return
	}
	target, ok := c.builder.Exprs.Ident(c.builder.Exprs.Unparen(as.Target))
	if !ok || !target.Symbol.IsValid() {
		c.expr(as.Value, qual.UnknownSignedness)
		return
	}
	sym := target.Symbol
	declared := c.declaredOf(sym)

	var provided qual.Qualifier
	if as.Compound {
		current := c.readVar(sym)
		rhs := c.expr(as.Value, current)
		out := rules.Evaluate(as.Op, current, rhs)
		if !out.OK() {
			c.report(out.Violation, c.exprSpan(as.Value),
				fmt.Sprintf("compound '%s=' on '%s' rejected for %s and %s", as.Op, target.Name, current, rhs)).
				WithQuals(current, rhs).
				Emit()
		}
		provided = out.Result
	} else {
		provided = c.expr(as.Value, declared)
	}

	if !qual.Accepts(declared, provided) {
		c.report(diag.SgnSubtypeViolation, c.exprSpan(as.Value),
			fmt.Sprintf("cannot assign a %s value to '%s' (%s)", provided, target.Name, declared)).
			WithQuals(declared, provided).
			WithNote(c.builder.Symbol(sym).Span, "declared "+declared.Annotation()+" here").
			Emit()
	}
	c.record(as.Target, c.state.Refine(sym, provided, declared))
}

func (c *checker) walkIf(ifs *ast.IfStmt) {
	if ifs == nil {
		return
	}
	c.expr(ifs.Cond, qual.UnknownSignedness)

	thenState, elseState := c.branch(ifs.Cond)

	c.state = thenState
	c.walkStmt(ifs.Then)
	thenEnd := c.state

	c.state = elseState
	c.walkStmt(ifs.Else)
	elseEnd := c.state

	c.state = flow.Merge(thenEnd, elseEnd)
}

// branch splits the current state at cond into the states that enter the
// true and the false branch.
func (c *checker) branch(cond ast.ExprID) (then, els *flow.State) {
	then, els = c.state.Clone(), c.state.Clone()
	flow.RecognizeGuard(c.builder.Exprs, cond).Apply(then, els)
	return then, els
}

func (c *checker) walkReturn(ret *ast.ReturnStmt) {
	if ret != nil && ret.Expr.IsValid() {
		required := c.declaredReturn(c.unitID)
		provided := c.expr(ret.Expr, required)
		if c.unit.HasResult && !qual.Accepts(required, provided) {
			c.report(diag.SgnSubtypeViolation, c.exprSpan(ret.Expr),
				fmt.Sprintf("'%s' returns %s but a %s value is returned", c.unit.Name, required, provided)).
				WithQuals(required, provided).
				WithNote(c.unit.ReturnSpan, "result declared "+required.Annotation()+" here").
				Emit()
		}
	}
	c.state.MarkUnreachable()
}

func (c *checker) innermostLoop() *loopFrame {
	if n := len(c.loops); n > 0 {
		return c.loops[n-1]
	}
	return nil
}
