// Package rules decides which operations are legal on which signedness
// qualifiers and what qualifier the result carries.
//
// Every evaluation yields a result qualifier, rejected or not: a rejection
// still names the qualifier implied by the operation's nominal type so the
// caller can keep checking the rest of the expression.
package rules

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/qual"
)

// Outcome is the verdict for one operation.
type Outcome struct {
	Result    qual.Qualifier
	Violation diag.Code // diag.UnknownCode when legal
}

// OK reports whether the operation is legal.
func (o Outcome) OK() bool { return o.Violation == diag.UnknownCode }

func legal(q qual.Qualifier) Outcome { return Outcome{Result: q} }

func reject(code diag.Code, recovery qual.Qualifier) Outcome {
	return Outcome{Result: recovery, Violation: code}
}

// Evaluate checks `left op right`.
func Evaluate(op ast.BinaryOp, left, right qual.Qualifier) Outcome {
	spec, ok := binarySpecTable[op]
	if !ok {
		return legal(qual.UnknownSignedness)
	}
	return evaluateSpec(spec, left, right)
}

// EvaluateCategory checks an operation by category alone; shift operators
// evaluated this way get no direction-specific checks.
func EvaluateCategory(cat Category, left, right qual.Qualifier) Outcome {
	return evaluateSpec(BinarySpec{Category: cat}, left, right)
}

func evaluateSpec(spec BinarySpec, left, right qual.Qualifier) Outcome {
	switch spec.Category {
	case Arithmetic:
		return arithmetic(spec.Flags, left, right)
	case Comparison:
		out := arithmetic(spec.Flags, left, right)
		out.Result = qual.UnknownSignedness
		return out
	case Equality:
		// equality of bit patterns is allowed nowhere, mixed signedness is
		// fine since == and != do not depend on the interpretation
		if left == qual.BitPattern || right == qual.BitPattern {
			return reject(diag.SgnArithmeticOnBitPattern, qual.UnknownSignedness)
		}
		return legal(qual.UnknownSignedness)
	case Bitwise:
		return legal(bitwiseResult(left, right))
	case Shift:
		return shift(spec.Flags, left, right)
	case Cast:
		return EvaluateCast(left, right, false)
	default:
		// Logical operators work on any qualifier and produce a boolean,
		// which carries no signedness.
		return legal(qual.UnknownSignedness)
	}
}

func arithmetic(flags Flags, left, right qual.Qualifier) Outcome {
	joined := qual.Join(left, right)
	if left == qual.BitPattern || right == qual.BitPattern {
		return reject(diag.SgnArithmeticOnBitPattern, joined)
	}
	if mixedSignedness(left, right) {
		return reject(diag.SgnMixedSignednessComparison, joined)
	}
	// SignedPositive values are valid unsigned values too.
	if (left == qual.SignedPositive && right == qual.Unsigned) || (left == qual.Unsigned && right == qual.SignedPositive) {
		return legal(qual.Unsigned)
	}
	// subtracting a positive value can go below zero; subtracting zero cannot
	if flags&FlagMayNegate != 0 && joined == qual.SignedPositive && right == qual.SignedPositive {
		return legal(qual.Signed)
	}
	return legal(joined)
}

func mixedSignedness(left, right qual.Qualifier) bool {
	return (left == qual.Signed && right == qual.Unsigned) || (left == qual.Unsigned && right == qual.Signed)
}

func bitwiseResult(left, right qual.Qualifier) qual.Qualifier {
	if left == qual.BitPattern || right == qual.BitPattern {
		return qual.BitPattern
	}
	return qual.Join(left, right)
}

// shift: >> replicates the sign bit and >>> shifts in zeros, so each is
// rejected on the interpretation it would corrupt. Non-negative signed values
// are fine either way, and a bit pattern on either side makes the whole
// shift a bit manipulation.
func shift(flags Flags, left, right qual.Qualifier) Outcome {
	result := bitwiseResult(left, right)
	switch {
	case result == qual.BitPattern:
		return legal(result)
	case flags&FlagSignPropagating != 0 && left == qual.Unsigned:
		return reject(diag.SgnIllegalShiftOperand, result)
	case flags&FlagZeroFilling != 0 && left == qual.Signed:
		return reject(diag.SgnIllegalShiftOperand, result)
	}
	return legal(result)
}

// EvaluateUnary checks `op operand`.
func EvaluateUnary(op ast.UnaryOp, operand qual.Qualifier) Outcome {
	switch op {
	case ast.UnaryNeg:
		if operand == qual.BitPattern {
			return reject(diag.SgnArithmeticOnBitPattern, operand)
		}
		if operand == qual.SignedPositive {
			return legal(qual.Signed)
		}
		return legal(operand)
	case ast.UnaryPlus:
		if operand == qual.BitPattern {
			return reject(diag.SgnArithmeticOnBitPattern, operand)
		}
		return legal(operand)
	case ast.UnaryBitNot:
		// ~x of a non-negative signed value is negative
		if operand == qual.SignedPositive {
			return legal(qual.Signed)
		}
		return legal(operand)
	default:
		return legal(qual.UnknownSignedness)
	}
}

// EvaluateCast checks `value to target`. Widening is always legal, as is
// reading a SignedPositive value as Unsigned; anything else needs an
// explicit acknowledgment. The result is the target either way.
func EvaluateCast(source, target qual.Qualifier, acknowledged bool) Outcome {
	switch {
	case qual.IsSubtype(source, target):
		return legal(target)
	case source == qual.SignedPositive && target == qual.Unsigned:
		return legal(target)
	case acknowledged:
		return legal(target)
	default:
		return reject(diag.SgnUncheckedNarrowingCast, target)
	}
}
