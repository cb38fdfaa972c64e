package sema

import (
	"signcheck/internal/annot"
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/flow"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

type loopFrame struct {
	breaks    []*flow.State
	continues []*flow.State
	locals    []ast.SymbolID // declared anywhere inside the loop
}

type checker struct {
	builder *ast.Builder
	unitID  ast.UnitID
	unit    *ast.Unit
	store   annot.Store
	maxIter int
	result  *Result

	bag      *diag.Bag
	reporter diag.Reporter

	state  *flow.State
	scopes [][]ast.SymbolID
	loops  []*loopFrame

	// silent > 0 while computing loop fixpoints: nothing is reported or recorded.
	silent int
}

func newChecker(builder *ast.Builder, unit ast.UnitID, opts Options, res *Result) *checker {
	store := opts.Store
	if store == nil {
		store = annot.Empty
	}
	maxIter := opts.MaxLoopIterations
	if maxIter <= 0 {
		maxIter = defaultLoopIterations
	}
	bag := diag.NewBag(8)
	return &checker{
		builder:  builder,
		unitID:   unit,
		unit:     builder.Unit(unit),
		store:    store,
		maxIter:  maxIter,
		result:   res,
		bag:      bag,
		reporter: diag.BagReporter{Bag: bag},
		state:    flow.NewState(),
	}
}

func (c *checker) run() {
	for _, p := range c.unit.Params {
		c.state.Set(p, c.declaredOf(p))
	}
	c.walkStmt(c.unit.Body)
}

// declaredOf returns the declared qualifier of a symbol of any unit of the file.
func (c *checker) declaredOf(sym ast.SymbolID) qual.Qualifier {
	s := c.builder.Symbol(sym)
	if s == nil {
		return qual.UnknownSignedness
	}
	if s.Annotated {
		return s.Annotation
	}
	owner := c.builder.Unit(s.Unit)
	if owner == nil {
		return qual.UnknownSignedness
	}
	return c.store.LookupDeclaredQualifier(annot.Key(owner.Name, s.Name))
}

// declaredReturn returns the declared result qualifier of unit.
func (c *checker) declaredReturn(unit ast.UnitID) qual.Qualifier {
	u := c.builder.Unit(unit)
	if u.ReturnAnnotated {
		return u.Return
	}
	return c.store.LookupDeclaredQualifier(annot.ReturnKey(u.Name))
}

// report starts a diagnostic; nil while silent, and ReportBuilder is nil-safe.
func (c *checker) report(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	if c.silent > 0 {
		return nil
	}
	return diag.ReportError(c.reporter, code, sp, msg)
}

func (c *checker) record(id ast.ExprID, q qual.Qualifier) qual.Qualifier {
	if c.silent == 0 {
		c.result.ExprQuals[id] = q
	}
	return q
}

func (c *checker) exprSpan(id ast.ExprID) source.Span {
	if e := c.builder.Exprs.Get(id); e != nil {
		return e.Span
	}
	return c.unit.Span
}

func (c *checker) symbolName(sym ast.SymbolID) string {
	if s := c.builder.Symbol(sym); s != nil {
		return s.Name
	}
	return "?"
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, nil)
}

// popScope drops the locals of the innermost scope from the current state.
func (c *checker) popScope() {
	top := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.state.Restrict(top)
}

func (c *checker) declareLocal(sym ast.SymbolID) {
	if n := len(c.scopes); n > 0 {
		c.scopes[n-1] = append(c.scopes[n-1], sym)
	}
	for _, lf := range c.loops {
		lf.locals = append(lf.locals, sym)
	}
}
