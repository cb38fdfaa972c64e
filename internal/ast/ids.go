package ast

type (
	UnitID    uint32
	StmtID    uint32
	ExprID    uint32
	SymbolID  uint32
	PayloadID uint32
)

const (
	NoUnitID    UnitID    = 0
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoSymbolID  SymbolID  = 0
	NoPayloadID PayloadID = 0
)

func (id UnitID) IsValid() bool    { return id != NoUnitID }
func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id SymbolID) IsValid() bool  { return id != NoSymbolID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
