package ast

import (
	"fmt"

	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprBinary
	ExprUnary
	ExprCast
	ExprCall
	ExprGroup
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	// Арифметические
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod

	// Битовые
	BinaryBitAnd
	BinaryBitOr
	BinaryBitXor

	// Сдвиги: >> сохраняет знак, >>> заполняет нулями
	BinaryShl
	BinaryShr
	BinaryUshr

	// Логические
	BinaryLogicalAnd
	BinaryLogicalOr

	// Сравнения
	BinaryEq
	BinaryNotEq
	BinaryLess
	BinaryLessEq
	BinaryGreater
	BinaryGreaterEq
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryBitAnd:
		return "&"
	case BinaryBitOr:
		return "|"
	case BinaryBitXor:
		return "^"
	case BinaryShl:
		return "<<"
	case BinaryShr:
		return ">>"
	case BinaryUshr:
		return ">>>"
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	case BinaryEq:
		return "=="
	case BinaryNotEq:
		return "!="
	case BinaryLess:
		return "<"
	case BinaryLessEq:
		return "<="
	case BinaryGreater:
		return ">"
	case BinaryGreaterEq:
		return ">="
	default:
		return fmt.Sprintf("BinaryOp(%d)", uint8(op))
	}
}

// UnaryOp enumerates unary operator kinds.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryPlus
	UnaryBitNot
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryBitNot:
		return "~"
	case UnaryNot:
		return "!"
	default:
		return fmt.Sprintf("UnaryOp(%d)", uint8(op))
	}
}

// ExprIdentData holds a resolved identifier.
type ExprIdentData struct {
	Name   string
	Symbol SymbolID // NoSymbolID when the host could not resolve it
}

// ExprLiteralData holds an integer literal.
type ExprLiteralData struct {
	Raw   string
	Value uint64
}

// ExprBinaryData holds binary operation expression details.
type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

// ExprUnaryData holds unary operation expression details.
type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

// ExprCastData describes `value to @q` or the acknowledged `value to! @q`.
type ExprCastData struct {
	Value        ExprID
	Target       qual.Qualifier
	Acknowledged bool
	KwSpan       source.Span // span of `to` / `to!`
}

// ExprCallData holds a call by name; callees are other units of the file.
type ExprCallData struct {
	Callee     string
	CalleeSpan source.Span
	Args       []ExprID
}

// ExprGroupData holds a parenthesised expression.
type ExprGroupData struct {
	Inner ExprID
}
