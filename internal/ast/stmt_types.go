package ast

import "signcheck/internal/source"

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtAssign
	StmtExpr
	StmtIf
	StmtWhile
	StmtReturn
	StmtBreak
	StmtContinue
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtLet:
		return "let"
	case StmtAssign:
		return "assign"
	case StmtExpr:
		return "expr"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtReturn:
		return "return"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Stmt is a statement node. Break and Continue carry no payload.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

// LetStmt declares Symbol; Value may be NoExprID.
type LetStmt struct {
	Symbol SymbolID
	Value  ExprID
}

// AssignStmt is `target = value` or, when Compound, `target op= value`.
type AssignStmt struct {
	Target   ExprID
	Op       BinaryOp
	Compound bool
	Value    ExprID
}

type ExprStmt struct {
	Expr ExprID
}

// IfStmt: Else may be NoStmtID.
type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

// ReturnStmt: Expr is NoExprID for a bare `return;`.
type ReturnStmt struct {
	Expr ExprID
}
