package ast

import "signcheck/internal/source"

// Stmts manages allocation of statements.
type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Lets    *Arena[LetStmt]
	Assigns *Arena[AssignStmt]
	Exprs   *Arena[ExprStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
	Returns *Arena[ReturnStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint / 2),
		Lets:    NewArena[LetStmt](capHint / 2),
		Assigns: NewArena[AssignStmt](capHint / 2),
		Exprs:   NewArena[ExprStmt](capHint / 4),
		Ifs:     NewArena[IfStmt](capHint / 4),
		Whiles:  NewArena[WhileStmt](capHint / 4),
		Returns: NewArena[ReturnStmt](capHint / 4),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Stmts: stmts}))
}

func (s *Stmts) Block(id StmtID) *BlockStmt {
	p, ok := s.payload(id, StmtBlock)
	if !ok {
		return nil
	}
	return s.Blocks.Get(p)
}

func (s *Stmts) NewLet(span source.Span, sym SymbolID, value ExprID) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(LetStmt{Symbol: sym, Value: value}))
}

func (s *Stmts) Let(id StmtID) *LetStmt {
	p, ok := s.payload(id, StmtLet)
	if !ok {
		return nil
	}
	return s.Lets.Get(p)
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Target: target, Value: value}))
}

func (s *Stmts) NewCompoundAssign(span source.Span, op BinaryOp, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Target: target, Op: op, Compound: true, Value: value}))
}

func (s *Stmts) Assign(id StmtID) *AssignStmt {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil
	}
	return s.Assigns.Get(p)
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) *ExprStmt {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil
	}
	return s.Exprs.Get(p)
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) *IfStmt {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil
	}
	return s.Ifs.Get(p)
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) While(id StmtID) *WhileStmt {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil
	}
	return s.Whiles.Get(p)
}

func (s *Stmts) NewReturn(span source.Span, expr ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Expr: expr}))
}

func (s *Stmts) Return(id StmtID) *ReturnStmt {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil
	}
	return s.Returns.Get(p)
}

func (s *Stmts) NewBreak(span source.Span) StmtID {
	return s.new(StmtBreak, span, 0)
}

func (s *Stmts) NewContinue(span source.Span) StmtID {
	return s.new(StmtContinue, span, 0)
}
