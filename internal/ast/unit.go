package ast

import (
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// SymbolKind distinguishes parameters from locals.
type SymbolKind uint8

const (
	SymbolParam SymbolKind = iota
	SymbolLocal
)

func (k SymbolKind) String() string {
	if k == SymbolParam {
		return "param"
	}
	return "local"
}

// Symbol is a variable of one unit. Annotation is meaningful only when
// Annotated is set; otherwise the annotation store decides.
type Symbol struct {
	Name       string
	Span       source.Span
	Kind       SymbolKind
	Unit       UnitID
	Annotation qual.Qualifier
	Annotated  bool
}

// Unit is one checkable function.
type Unit struct {
	Name     string
	Span     source.Span
	NameSpan source.Span
	Params   []SymbolID
	Locals   []SymbolID
	Body     StmtID

	// HasResult is false for `fn f()` without `->`.
	HasResult       bool
	Return          qual.Qualifier
	ReturnAnnotated bool
	ReturnSpan      source.Span
}
