package sema

import (
	"signcheck/internal/ast"
	"signcheck/internal/qual"
)

// literalValue peels groups and unary plus off expr and reports whether what
// remains is a plain (non-negated) integer literal.
func (c *checker) literalValue(expr ast.ExprID) (uint64, bool) {
	current := expr
	for current.IsValid() {
		node := c.builder.Exprs.Get(current)
		if node == nil {
			return 0, false
		}
		switch node.Kind {
		case ast.ExprGroup:
			g, _ := c.builder.Exprs.Group(current)
			current = g.Inner
		case ast.ExprUnary:
			un, _ := c.builder.Exprs.Unary(current)
			if un.Op != ast.UnaryPlus {
				return 0, false
			}
			current = un.Operand
		case ast.ExprLit:
			lit, _ := c.builder.Exprs.Literal(current)
			return lit.Value, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// literalQualifier is the qualifier of a non-negative literal: zero is the
// bottom, anything else is SignedPositive.
func literalQualifier(v uint64) qual.Qualifier {
	if v == 0 {
		return qual.SignednessBottom
	}
	return qual.SignedPositive
}

// adoptLiteral lets a literal take the qualifier its context wants. A
// positive literal is a valid unsigned value and a valid bit pattern, so it
// adopts those; otherwise it keeps its own qualifier, which already fits or
// will be rejected where it is used.
func adoptLiteral(own, context qual.Qualifier) qual.Qualifier {
	if qual.IsSubtype(own, context) {
		return own
	}
	if context == qual.Unsigned || context == qual.BitPattern {
		return context
	}
	return own
}
