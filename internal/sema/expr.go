package sema

import (
	"fmt"

	"signcheck/internal/annot"
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/qual"
	"signcheck/internal/rules"
)

// expr computes and records the qualifier of id. expected is the qualifier
// the context wants, used only by literals; UnknownSignedness means none.
func (c *checker) expr(id ast.ExprID, expected qual.Qualifier) qual.Qualifier {
	node := c.builder.Exprs.Get(id)
	if node == nil {
		return qual.UnknownSignedness
	}
	switch node.Kind {
	case ast.ExprIdent:
		ident, _ := c.builder.Exprs.Ident(id)
		return c.record(id, c.readVar(ident.Symbol))

	case ast.ExprLit:
		lit, _ := c.builder.Exprs.Literal(id)
		return c.record(id, adoptLiteral(literalQualifier(lit.Value), expected))

	case ast.ExprGroup:
		g, _ := c.builder.Exprs.Group(id)
		return c.record(id, c.expr(g.Inner, expected))

	case ast.ExprUnary:
		return c.record(id, c.unaryExpr(id, expected))

	case ast.ExprBinary:
		return c.record(id, c.binaryExpr(id, expected))

	case ast.ExprCast:
		return c.record(id, c.castExpr(id))

	case ast.ExprCall:
		return c.record(id, c.callExpr(id))

	default:
		return c.record(id, qual.UnknownSignedness)
	}
}

// readVar returns the current qualifier of a variable on this path.
func (c *checker) readVar(sym ast.SymbolID) qual.Qualifier {
	if !sym.IsValid() {
		return qual.UnknownSignedness
	}
	if q, ok := c.state.Get(sym); ok {
		return q
	}
	return c.declaredOf(sym)
}

func (c *checker) unaryExpr(id ast.ExprID, expected qual.Qualifier) qual.Qualifier {
	un, _ := c.builder.Exprs.Unary(id)
	var operand qual.Qualifier
	switch un.Op {
	case ast.UnaryPlus, ast.UnaryBitNot:
		operand = c.expr(un.Operand, expected)
	default:
		operand = c.expr(un.Operand, qual.UnknownSignedness)
	}
	out := rules.EvaluateUnary(un.Op, operand)
	if !out.OK() {
		c.report(out.Violation, c.exprSpan(id),
			fmt.Sprintf("arithmetic operator '%s' applied to a %s operand", un.Op, operand)).
			WithQuals(operand).
			Emit()
	}
	return out.Result
}

func (c *checker) binaryExpr(id ast.ExprID, expected qual.Qualifier) qual.Qualifier {
	bin, _ := c.builder.Exprs.Binary(id)
	spec, _ := rules.BinarySpecFor(bin.Op)

	var left, right qual.Qualifier
	switch spec.Category {
	case rules.Logical, rules.CategoryUnknown:
		left = c.expr(bin.Left, qual.UnknownSignedness)
		right = c.expr(bin.Right, qual.UnknownSignedness)
	default:
		left, right = c.operands(bin, spec.Category, expected)
	}

	out := rules.Evaluate(bin.Op, left, right)
	if !out.OK() {
		c.reportBinary(id, bin, spec.Category, out.Violation, left, right)
	}
	return out.Result
}

// operands evaluates both sides left to right, except that a literal side
// is evaluated after the other so it can adopt that side's qualifier.
func (c *checker) operands(bin *ast.ExprBinaryData, cat rules.Category, expected qual.Qualifier) (left, right qual.Qualifier) {
	// boolean results give operands no expectation
	if cat == rules.Comparison || cat == rules.Equality {
		expected = qual.UnknownSignedness
	}
	_, leftLit := c.literalValue(bin.Left)
	_, rightLit := c.literalValue(bin.Right)
	switch {
	case leftLit && !rightLit:
		right = c.expr(bin.Right, qual.UnknownSignedness)
		left = c.expr(bin.Left, right)
	case rightLit && !leftLit:
		left = c.expr(bin.Left, qual.UnknownSignedness)
		right = c.expr(bin.Right, left)
	default:
		left = c.expr(bin.Left, expected)
		right = c.expr(bin.Right, expected)
	}
	return left, right
}

func (c *checker) reportBinary(id ast.ExprID, bin *ast.ExprBinaryData, cat rules.Category, code diag.Code, left, right qual.Qualifier) {
	var msg string
	switch code {
	case diag.SgnArithmeticOnBitPattern:
		msg = fmt.Sprintf("%s operator '%s' applied to a BitPattern operand (%s %s %s)", cat, bin.Op, left, bin.Op, right)
	case diag.SgnMixedSignednessComparison:
		msg = fmt.Sprintf("%s operator '%s' mixes %s and %s operands", cat, bin.Op, left, right)
	case diag.SgnIllegalShiftOperand:
		if bin.Op == ast.BinaryShr {
			msg = fmt.Sprintf("'>>' sign-extends its %s left operand; use '>>>'", left)
		} else {
			msg = fmt.Sprintf("'>>>' zero-fills its %s left operand; use '>>'", left)
		}
	default:
		msg = fmt.Sprintf("operator '%s' rejected for %s and %s", bin.Op, left, right)
	}
	b := c.report(code, c.exprSpan(id), msg).WithQuals(left, right)
	if code == diag.SgnMixedSignednessComparison {
		b = b.WithNote(c.exprSpan(bin.Left), "left operand is "+left.String()).
			WithNote(c.exprSpan(bin.Right), "right operand is "+right.String())
	}
	b.Emit()
}

func (c *checker) castExpr(id ast.ExprID) qual.Qualifier {
	cast, _ := c.builder.Exprs.Cast(id)
	source := c.expr(cast.Value, cast.Target)
	out := rules.EvaluateCast(source, cast.Target, cast.Acknowledged)
	if !out.OK() {
		c.report(out.Violation, c.exprSpan(id),
			fmt.Sprintf("cast from %s to %s narrows without acknowledgment", source, cast.Target)).
			WithQuals(source, cast.Target).
			WithFix("acknowledge narrowing cast", diag.FixEdit{Span: cast.KwSpan, NewText: "to!", OldText: "to"}).
			Emit()
	}
	return out.Result
}

// callExpr checks arguments against the callee's declared parameters when
// the callee is a unit of this file; otherwise only its result is looked up.
func (c *checker) callExpr(id ast.ExprID) qual.Qualifier {
	call, _ := c.builder.Exprs.Call(id)
	callee, found := c.builder.LookupUnit(call.Callee)
	if !found {
		for _, arg := range call.Args {
			c.expr(arg, qual.UnknownSignedness)
		}
		return c.store.LookupDeclaredQualifier(annot.ReturnKey(call.Callee))
	}

	params := c.builder.Unit(callee).Params
	for i, arg := range call.Args {
		if i >= len(params) {
			c.expr(arg, qual.UnknownSignedness)
			continue
		}
		required := c.declaredOf(params[i])
		provided := c.expr(arg, required)
		if !qual.Accepts(required, provided) {
			c.report(diag.SgnSubtypeViolation, c.exprSpan(arg),
				fmt.Sprintf("argument %d of '%s' is %s, parameter '%s' requires %s",
					i+1, call.Callee, provided, c.symbolName(params[i]), required)).
				WithQuals(required, provided).
				WithNote(c.builder.Symbol(params[i]).Span, "parameter declared here").
				Emit()
		}
	}
	return c.declaredReturn(callee)
}
