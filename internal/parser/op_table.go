package parser

import (
	"signcheck/internal/ast"
	"signcheck/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // == !=
	precComparison     = 4 // < <= > >=
	precBitwiseOr      = 5 // |
	precBitwiseXor     = 6 // ^
	precBitwiseAnd     = 7 // &
	precShift          = 8 // << >> >>>
	precAdditive       = 9 // + -
	precMultiplicative = 10
)

type binaryOpInfo struct {
	prec int
	op   ast.BinaryOp
}

var binaryOps = map[token.Kind]binaryOpInfo{
	token.OrOr:    {precLogicalOr, ast.BinaryLogicalOr},
	token.AndAnd:  {precLogicalAnd, ast.BinaryLogicalAnd},
	token.EqEq:    {precEquality, ast.BinaryEq},
	token.BangEq:  {precEquality, ast.BinaryNotEq},
	token.Lt:      {precComparison, ast.BinaryLess},
	token.LtEq:    {precComparison, ast.BinaryLessEq},
	token.Gt:      {precComparison, ast.BinaryGreater},
	token.GtEq:    {precComparison, ast.BinaryGreaterEq},
	token.Pipe:    {precBitwiseOr, ast.BinaryBitOr},
	token.Caret:   {precBitwiseXor, ast.BinaryBitXor},
	token.Amp:     {precBitwiseAnd, ast.BinaryBitAnd},
	token.Shl:     {precShift, ast.BinaryShl},
	token.Shr:     {precShift, ast.BinaryShr},
	token.Ushr:    {precShift, ast.BinaryUshr},
	token.Plus:    {precAdditive, ast.BinaryAdd},
	token.Minus:   {precAdditive, ast.BinarySub},
	token.Star:    {precMultiplicative, ast.BinaryMul},
	token.Slash:   {precMultiplicative, ast.BinaryDiv},
	token.Percent: {precMultiplicative, ast.BinaryMod},
}

// getBinaryOperatorPrec возвращает приоритет; -1 для не-операторов.
// Все бинарные операторы левоассоциативны.
func getBinaryOperatorPrec(kind token.Kind) (int, ast.BinaryOp) {
	info, ok := binaryOps[kind]
	if !ok {
		return -1, 0
	}
	return info.prec, info.op
}

var compoundAssignOps = map[token.Kind]ast.BinaryOp{
	token.PlusAssign:    ast.BinaryAdd,
	token.MinusAssign:   ast.BinarySub,
	token.StarAssign:    ast.BinaryMul,
	token.SlashAssign:   ast.BinaryDiv,
	token.PercentAssign: ast.BinaryMod,
	token.AmpAssign:     ast.BinaryBitAnd,
	token.PipeAssign:    ast.BinaryBitOr,
	token.CaretAssign:   ast.BinaryBitXor,
	token.ShlAssign:     ast.BinaryShl,
	token.ShrAssign:     ast.BinaryShr,
	token.UshrAssign:    ast.BinaryUshr,
}

var unaryOps = map[token.Kind]ast.UnaryOp{
	token.Minus: ast.UnaryNeg,
	token.Plus:  ast.UnaryPlus,
	token.Tilde: ast.UnaryBitNot,
	token.Bang:  ast.UnaryNot,
}
