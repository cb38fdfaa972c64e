// Package sema runs the signedness check over the units of a parsed file.
//
// Each unit is checked on its own with a private flow state and diagnostic
// bag; nothing is shared between units, so callers may check units of the
// same builder concurrently.
package sema

import (
	"context"

	"signcheck/internal/annot"
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// defaultLoopIterations bounds the silent fixpoint passes over one loop. The
// qualifier chain is short, so real loops settle in two or three passes.
const defaultLoopIterations = 8

// Options configure a check.
type Options struct {
	// Store supplies declared qualifiers for unannotated declarations; nil
	// means everything unannotated is UnknownSignedness.
	Store annot.Store
	// MaxLoopIterations caps the fixpoint passes per loop; 0 selects the default.
	MaxLoopIterations int
}

// Result holds everything one unit produced.
type Result struct {
	Unit        ast.UnitID
	Name        string
	Diagnostics []diag.Diagnostic
	ExprQuals   map[ast.ExprID]qual.Qualifier

	exprs  *ast.Exprs
	bySpan map[source.Span]ast.ExprID
}

// FinalQualifier returns the qualifier recorded for expr after flow analysis,
// UnknownSignedness for expressions the check never reached.
func (r *Result) FinalQualifier(expr ast.ExprID) qual.Qualifier {
	if q, ok := r.ExprQuals[expr]; ok {
		return q
	}
	return qual.UnknownSignedness
}

// FinalQualifierAt looks an expression up by its exact source span. When
// several expressions share a span the outermost one wins. A Result is
// read-only once CheckUnit returns, so lookups are safe from any goroutine.
func (r *Result) FinalQualifierAt(span source.Span) (qual.Qualifier, bool) {
	id, ok := r.bySpan[span]
	if !ok {
		return qual.UnknownSignedness, false
	}
	return r.ExprQuals[id], true
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// CheckUnit checks one unit. It always walks the whole unit and never fails.
func CheckUnit(builder *ast.Builder, unit ast.UnitID, opts Options) *Result {
	res := &Result{
		Unit:      unit,
		ExprQuals: make(map[ast.ExprID]qual.Qualifier),
		exprs:     builder.Exprs,
	}
	u := builder.Unit(unit)
	if u == nil {
		return res
	}
	res.Name = u.Name

	c := newChecker(builder, unit, opts, res)
	c.run()
	res.Diagnostics = c.bag.Drain()
	res.indexSpans()
	return res
}

// indexSpans builds the span lookup used by FinalQualifierAt; outer
// expressions are allocated after their operands and win ties.
func (r *Result) indexSpans() {
	r.bySpan = make(map[source.Span]ast.ExprID, len(r.ExprQuals))
	for id := range r.ExprQuals {
		sp := r.exprs.Get(id).Span
		if prev, ok := r.bySpan[sp]; !ok || id > prev {
			r.bySpan[sp] = id
		}
	}
}

// Check checks every unit of builder in declaration order, stopping early
// only when ctx is cancelled.
func Check(ctx context.Context, builder *ast.Builder, opts Options) ([]*Result, error) {
	ids := builder.UnitIDs()
	out := make([]*Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, CheckUnit(builder, id, opts))
	}
	return out, nil
}
