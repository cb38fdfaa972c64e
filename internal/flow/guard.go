package flow

import (
	"signcheck/internal/ast"
	"signcheck/internal/qual"
)

// Guard lists the variables a condition proves non-negative, separately for
// the branch taken when it holds and the branch taken when it does not.
type Guard struct {
	Then []ast.SymbolID
	Else []ast.SymbolID
}

// Empty reports whether the guard narrows nothing.
func (g Guard) Empty() bool {
	return len(g.Then) == 0 && len(g.Else) == 0
}

func (g Guard) swapped() Guard {
	return Guard{Then: g.Else, Else: g.Then}
}

// RecognizeGuard inspects cond. Recognised shapes, for a variable v:
//
//	v >= 0, v > 0, 0 <= v, 0 < v   narrow v when true
//	v < 0, v <= 0, 0 > v, 0 >= v   narrow v when false
//
// Parentheses are transparent, `!c` swaps the branches of c, `a && b` narrows
// the true branch by both sides and `a || b` the false branch by both sides.
// Anything else narrows nothing.
func RecognizeGuard(exprs *ast.Exprs, cond ast.ExprID) Guard {
	cond = exprs.Unparen(cond)

	if un, ok := exprs.Unary(cond); ok && un.Op == ast.UnaryNot {
		return RecognizeGuard(exprs, un.Operand).swapped()
	}
	bin, ok := exprs.Binary(cond)
	if !ok {
		return Guard{}
	}

	switch bin.Op {
	case ast.BinaryLogicalAnd:
		l, r := RecognizeGuard(exprs, bin.Left), RecognizeGuard(exprs, bin.Right)
		return Guard{Then: append(append([]ast.SymbolID(nil), l.Then...), r.Then...)}
	case ast.BinaryLogicalOr:
		l, r := RecognizeGuard(exprs, bin.Left), RecognizeGuard(exprs, bin.Right)
		return Guard{Else: append(append([]ast.SymbolID(nil), l.Else...), r.Else...)}
	}

	if sym, ok := variable(exprs, bin.Left); ok && isZero(exprs, bin.Right) {
		switch bin.Op {
		case ast.BinaryGreaterEq, ast.BinaryGreater:
			return Guard{Then: []ast.SymbolID{sym}}
		case ast.BinaryLess, ast.BinaryLessEq:
			return Guard{Else: []ast.SymbolID{sym}}
		}
		return Guard{}
	}
	if sym, ok := variable(exprs, bin.Right); ok && isZero(exprs, bin.Left) {
		switch bin.Op {
		case ast.BinaryLessEq, ast.BinaryLess:
			return Guard{Then: []ast.SymbolID{sym}}
		case ast.BinaryGreater, ast.BinaryGreaterEq:
			return Guard{Else: []ast.SymbolID{sym}}
		}
	}
	return Guard{}
}

func variable(exprs *ast.Exprs, id ast.ExprID) (ast.SymbolID, bool) {
	ident, ok := exprs.Ident(exprs.Unparen(id))
	if !ok || !ident.Symbol.IsValid() {
		return ast.NoSymbolID, false
	}
	return ident.Symbol, true
}

// isZero accepts only the literal 0; comparisons against other constants
// narrow nothing.
func isZero(exprs *ast.Exprs, id ast.ExprID) bool {
	lit, ok := exprs.Literal(exprs.Unparen(id))
	return ok && lit.Value == 0
}

// Narrow returns what q becomes once its value is known to be non-negative.
func Narrow(q qual.Qualifier) qual.Qualifier {
	if q == qual.Signed || q == qual.SignedPositive {
		return qual.SignedPositive
	}
	return q
}

// Apply narrows the guarded variables in the branch states.
func (g Guard) Apply(then, els *State) {
	narrowAll(then, g.Then)
	narrowAll(els, g.Else)
}

func narrowAll(s *State, syms []ast.SymbolID) {
	if s == nil || s.unreachable {
		return
	}
	for _, sym := range syms {
		if q, ok := s.quals[sym]; ok {
			s.quals[sym] = Narrow(q)
		}
	}
}
