package flow

import (
	"testing"

	"signcheck/internal/ast"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

type fixture struct {
	b *ast.Builder
	x ast.SymbolID
	y ast.SymbolID
}

func newFixture() *fixture {
	b := ast.NewBuilder(1, ast.Hints{})
	u := b.NewUnit("f", source.Span{}, source.Span{})
	return &fixture{
		b: b,
		x: b.NewParam(u, "x", source.Span{}, qual.Signed, true),
		y: b.NewParam(u, "y", source.Span{}, qual.Signed, true),
	}
}

func (f *fixture) ident(sym ast.SymbolID) ast.ExprID {
	return f.b.Exprs.NewIdent(source.Span{}, f.b.Symbol(sym).Name, sym)
}

func (f *fixture) lit(v uint64) ast.ExprID {
	return f.b.Exprs.NewLiteral(source.Span{}, "", v)
}

func (f *fixture) bin(op ast.BinaryOp, l, r ast.ExprID) ast.ExprID {
	return f.b.Exprs.NewBinary(source.Span{}, op, l, r)
}

func TestGuardNarrowsThenMergeWidens(t *testing.T) {
	f := newFixture()
	entry := NewState()
	entry.Set(f.x, qual.Signed)

	g := RecognizeGuard(f.b.Exprs, f.bin(ast.BinaryGreaterEq, f.ident(f.x), f.lit(0)))
	then, els := entry.Clone(), entry.Clone()
	g.Apply(then, els)

	if q, _ := then.Get(f.x); q != qual.SignedPositive {
		t.Fatalf("x in true branch = %v, want SignedPositive", q)
	}
	if q, _ := els.Get(f.x); q != qual.Signed {
		t.Fatalf("x in false branch = %v, want Signed", q)
	}
	if q, _ := entry.Get(f.x); q != qual.Signed {
		t.Fatalf("narrowing leaked into the entry state: %v", q)
	}
	merged := Merge(then, els)
	if q, _ := merged.Get(f.x); q != qual.Signed {
		t.Fatalf("merged x = %v, want Signed", q)
	}
}

func TestRecognizedShapes(t *testing.T) {
	f := newFixture()
	x := func() ast.ExprID { return f.ident(f.x) }
	zero := func() ast.ExprID { return f.lit(0) }
	tests := []struct {
		name     string
		cond     ast.ExprID
		then     bool
		els      bool
		narrowed ast.SymbolID
	}{
		{"x >= 0", f.bin(ast.BinaryGreaterEq, x(), zero()), true, false, f.x},
		{"x > 0", f.bin(ast.BinaryGreater, x(), zero()), true, false, f.x},
		{"0 <= x", f.bin(ast.BinaryLessEq, zero(), x()), true, false, f.x},
		{"0 < x", f.bin(ast.BinaryLess, zero(), x()), true, false, f.x},
		{"x < 0", f.bin(ast.BinaryLess, x(), zero()), false, true, f.x},
		{"x <= 0", f.bin(ast.BinaryLessEq, x(), zero()), false, true, f.x},
		{"0 > x", f.bin(ast.BinaryGreater, zero(), x()), false, true, f.x},
		{"0 >= x", f.bin(ast.BinaryGreaterEq, zero(), x()), false, true, f.x},
		{"((x)) >= (0)", f.bin(ast.BinaryGreaterEq, f.b.Exprs.NewGroup(source.Span{}, f.b.Exprs.NewGroup(source.Span{}, x())), f.b.Exprs.NewGroup(source.Span{}, zero())), true, false, f.x},
		{"!(x >= 0)", f.b.Exprs.NewUnary(source.Span{}, ast.UnaryNot, f.bin(ast.BinaryGreaterEq, x(), zero())), false, true, f.x},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := RecognizeGuard(f.b.Exprs, tt.cond)
			if (len(g.Then) == 1) != tt.then || (len(g.Else) == 1) != tt.els {
				t.Fatalf("guard = %+v, want then=%v else=%v", g, tt.then, tt.els)
			}
			for _, sym := range append(g.Then, g.Else...) {
				if sym != tt.narrowed {
					t.Fatalf("narrowed %d, want %d", sym, tt.narrowed)
				}
			}
		})
	}
}

func TestUnrecognizedShapesNarrowNothing(t *testing.T) {
	f := newFixture()
	x, y := f.ident(f.x), f.ident(f.y)
	for name, cond := range map[string]ast.ExprID{
		"x == 0":  f.bin(ast.BinaryEq, f.ident(f.x), f.lit(0)),
		"x >= y":  f.bin(ast.BinaryGreaterEq, x, y),
		"x + 1":   f.bin(ast.BinaryAdd, f.ident(f.x), f.lit(1)),
		"x >= 5":  f.bin(ast.BinaryGreaterEq, f.ident(f.x), f.lit(5)),
		"x > 1":   f.bin(ast.BinaryGreater, f.ident(f.x), f.lit(1)),
		"5 <= x":  f.bin(ast.BinaryLessEq, f.lit(5), f.ident(f.x)),
		"x < 10":  f.bin(ast.BinaryLess, f.ident(f.x), f.lit(10)),
		"-x >= 0": f.bin(ast.BinaryGreaterEq, f.b.Exprs.NewUnary(source.Span{}, ast.UnaryNeg, f.ident(f.x)), f.lit(0)),
		"x >= -1": f.bin(ast.BinaryGreaterEq, f.ident(f.x), f.b.Exprs.NewUnary(source.Span{}, ast.UnaryNeg, f.lit(1))),
		"literal": f.lit(1),
	} {
		if g := RecognizeGuard(f.b.Exprs, cond); !g.Empty() {
			t.Fatalf("%s: unexpected narrowing %+v", name, g)
		}
	}
}

func TestLogicalConnectives(t *testing.T) {
	f := newFixture()
	xPos := f.bin(ast.BinaryGreaterEq, f.ident(f.x), f.lit(0))
	yNeg := f.bin(ast.BinaryLess, f.ident(f.y), f.lit(0))

	and := RecognizeGuard(f.b.Exprs, f.bin(ast.BinaryLogicalAnd, xPos, f.bin(ast.BinaryGreater, f.ident(f.y), f.lit(0))))
	if len(and.Then) != 2 || len(and.Else) != 0 {
		t.Fatalf("&& guard = %+v", and)
	}
	or := RecognizeGuard(f.b.Exprs, f.bin(ast.BinaryLogicalOr, f.bin(ast.BinaryLess, f.ident(f.x), f.lit(0)), yNeg))
	if len(or.Else) != 2 || len(or.Then) != 0 {
		t.Fatalf("|| guard = %+v", or)
	}
}

func TestNarrowOnlyTouchesSignedValues(t *testing.T) {
	for _, q := range qual.All {
		got := Narrow(q)
		switch q {
		case qual.Signed, qual.SignedPositive:
			if got != qual.SignedPositive {
				t.Fatalf("Narrow(%v) = %v", q, got)
			}
		default:
			if got != q {
				t.Fatalf("Narrow(%v) = %v, want unchanged", q, got)
			}
		}
		if !qual.IsSubtype(got, q) {
			t.Fatalf("Narrow(%v) = %v widens", q, got)
		}
	}
}

func TestRefineIsClampedToDeclared(t *testing.T) {
	s := NewState()
	if got := s.Refine(1, qual.SignedPositive, qual.Signed); got != qual.SignedPositive {
		t.Fatalf("Refine within declared = %v", got)
	}
	if got := s.Refine(1, qual.Unsigned, qual.Signed); got != qual.Signed {
		t.Fatalf("Refine outside declared = %v, want Signed", got)
	}
}

func TestMergeIgnoresUnreachable(t *testing.T) {
	a, b := NewState(), NewState()
	a.Set(1, qual.SignedPositive)
	b.Set(1, qual.Unsigned)
	b.MarkUnreachable()

	m := Merge(a, b)
	if m.Unreachable() {
		t.Fatalf("merge with a reachable input must be reachable")
	}
	if q, _ := m.Get(1); q != qual.SignedPositive {
		t.Fatalf("merged = %v, want SignedPositive", q)
	}
	if q, _ := b.Get(1); q != qual.SignednessBottom {
		t.Fatalf("unreachable state must read Bottom, got %v", q)
	}

	a.MarkUnreachable()
	if !Merge(a, b).Unreachable() {
		t.Fatalf("merge of unreachable states must be unreachable")
	}
	if !Merge().Unreachable() {
		t.Fatalf("merge of nothing must be unreachable")
	}
}

func TestCloneEqualRestrict(t *testing.T) {
	s := NewState()
	s.Set(1, qual.Signed)
	s.Set(2, qual.BitPattern)
	c := s.Clone()
	if !c.Equal(s) {
		t.Fatalf("clone must equal original")
	}
	c.Set(1, qual.SignedPositive)
	if c.Equal(s) {
		t.Fatalf("clone must be independent")
	}
	c.Restrict([]ast.SymbolID{2})
	if _, ok := c.Get(2); ok || c.Len() != 1 {
		t.Fatalf("restricted symbol still present")
	}
}
