package rules

import (
	"fmt"

	"signcheck/internal/ast"
)

// Category groups operators that share one legality rule.
type Category uint8

const (
	CategoryUnknown Category = iota
	Arithmetic
	Comparison
	Equality
	Bitwise
	Shift
	Logical
	Cast
)

func (c Category) String() string {
	switch c {
	case Arithmetic:
		return "arithmetic"
	case Comparison:
		return "comparison"
	case Equality:
		return "equality"
	case Bitwise:
		return "bitwise"
	case Shift:
		return "shift"
	case Logical:
		return "logical"
	case Cast:
		return "cast"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Flags annotate operator-specific special cases.
type Flags uint8

const (
	FlagNone Flags = 0
	// FlagMayNegate: the result of two non-negative operands can be negative.
	FlagMayNegate Flags = 1 << iota
	// FlagSignPropagating: arithmetic right shift, meaningless on unsigned values.
	FlagSignPropagating
	// FlagZeroFilling: logical right shift, meaningless on signed values.
	FlagZeroFilling
)

// BinarySpec describes how one binary operator is checked.
type BinarySpec struct {
	Category Category
	Flags    Flags
}

var binarySpecTable = map[ast.BinaryOp]BinarySpec{
	ast.BinaryAdd: {Category: Arithmetic},
	ast.BinarySub: {Category: Arithmetic, Flags: FlagMayNegate},
	ast.BinaryMul: {Category: Arithmetic},
	ast.BinaryDiv: {Category: Arithmetic},
	ast.BinaryMod: {Category: Arithmetic},

	ast.BinaryLess:      {Category: Comparison},
	ast.BinaryLessEq:    {Category: Comparison},
	ast.BinaryGreater:   {Category: Comparison},
	ast.BinaryGreaterEq: {Category: Comparison},

	ast.BinaryEq:    {Category: Equality},
	ast.BinaryNotEq: {Category: Equality},

	ast.BinaryBitAnd: {Category: Bitwise},
	ast.BinaryBitOr:  {Category: Bitwise},
	ast.BinaryBitXor: {Category: Bitwise},

	ast.BinaryShl:  {Category: Shift},
	ast.BinaryShr:  {Category: Shift, Flags: FlagSignPropagating},
	ast.BinaryUshr: {Category: Shift, Flags: FlagZeroFilling},

	ast.BinaryLogicalAnd: {Category: Logical},
	ast.BinaryLogicalOr:  {Category: Logical},
}

// BinarySpecFor returns the spec of op; ok is false for operators the
// checker does not know.
func BinarySpecFor(op ast.BinaryOp) (BinarySpec, bool) {
	spec, ok := binarySpecTable[op]
	return spec, ok
}

// CategoryOf returns the category of op, CategoryUnknown if none.
func CategoryOf(op ast.BinaryOp) Category {
	return binarySpecTable[op].Category
}
