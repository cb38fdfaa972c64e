package ast

import (
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// Hints sizes the arenas of a Builder.
type Hints struct{ Units, Stmts, Exprs, Symbols uint }

// Builder owns every arena of one parsed file.
type Builder struct {
	File    source.FileID
	Units   *Arena[Unit]
	Symbols *Arena[Symbol]
	Stmts   *Stmts
	Exprs   *Exprs
	order   []UnitID
}

func NewBuilder(file source.FileID, hints Hints) *Builder {
	if hints.Units == 0 {
		hints.Units = 1 << 4
	}
	if hints.Symbols == 0 {
		hints.Symbols = 1 << 6
	}
	return &Builder{
		File:    file,
		Units:   NewArena[Unit](hints.Units),
		Symbols: NewArena[Symbol](hints.Symbols),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
	}
}

// NewUnit registers a unit; its body is attached later with SetBody.
func (b *Builder) NewUnit(name string, span, nameSpan source.Span) UnitID {
	id := UnitID(b.Units.Allocate(Unit{Name: name, Span: span, NameSpan: nameSpan}))
	b.order = append(b.order, id)
	return id
}

func (b *Builder) Unit(id UnitID) *Unit {
	return b.Units.Get(uint32(id))
}

// UnitIDs returns units in declaration order.
func (b *Builder) UnitIDs() []UnitID {
	return b.order
}

// LookupUnit finds a unit by name; the first declaration wins.
func (b *Builder) LookupUnit(name string) (UnitID, bool) {
	for _, id := range b.order {
		if b.Unit(id).Name == name {
			return id, true
		}
	}
	return NoUnitID, false
}

// SetResult records the declared return annotation of a unit.
func (b *Builder) SetResult(id UnitID, span source.Span, q qual.Qualifier, annotated bool) {
	u := b.Unit(id)
	u.HasResult = true
	u.Return = q
	u.ReturnAnnotated = annotated
	u.ReturnSpan = span
}

func (b *Builder) SetBody(id UnitID, body StmtID) {
	b.Unit(id).Body = body
}

// NewParam adds a parameter symbol to unit.
func (b *Builder) NewParam(unit UnitID, name string, span source.Span, q qual.Qualifier, annotated bool) SymbolID {
	sym := b.newSymbol(unit, SymbolParam, name, span, q, annotated)
	u := b.Unit(unit)
	u.Params = append(u.Params, sym)
	return sym
}

// NewLocal adds a local symbol to unit.
func (b *Builder) NewLocal(unit UnitID, name string, span source.Span, q qual.Qualifier, annotated bool) SymbolID {
	sym := b.newSymbol(unit, SymbolLocal, name, span, q, annotated)
	u := b.Unit(unit)
	u.Locals = append(u.Locals, sym)
	return sym
}

func (b *Builder) newSymbol(unit UnitID, kind SymbolKind, name string, span source.Span, q qual.Qualifier, annotated bool) SymbolID {
	if !annotated {
		q = qual.UnknownSignedness
	}
	return SymbolID(b.Symbols.Allocate(Symbol{
		Name:       name,
		Span:       span,
		Kind:       kind,
		Unit:       unit,
		Annotation: q,
		Annotated:  annotated,
	}))
}

func (b *Builder) Symbol(id SymbolID) *Symbol {
	return b.Symbols.Get(uint32(id))
}
