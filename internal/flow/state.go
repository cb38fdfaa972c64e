// Package flow tracks the current signedness qualifier of every variable
// along one control-flow path and merges paths where they reconverge.
package flow

import (
	"slices"

	"signcheck/internal/ast"
	"signcheck/internal/qual"
)

// State is the qualifier of each variable on one path. An unreachable state
// reads every variable as SignednessBottom and is ignored by Merge.
type State struct {
	quals       map[ast.SymbolID]qual.Qualifier
	unreachable bool
}

// NewState creates an empty reachable state.
func NewState() *State {
	return &State{quals: make(map[ast.SymbolID]qual.Qualifier, 8)}
}

// Clone creates a copy of the state (for branch analysis).
func (s *State) Clone() *State {
	clone := &State{
		quals:       make(map[ast.SymbolID]qual.Qualifier, len(s.quals)),
		unreachable: s.unreachable,
	}
	for sym, q := range s.quals {
		clone.quals[sym] = q
	}
	return clone
}

// Get returns the current qualifier of sym; ok is false for variables the
// path has not seen.
func (s *State) Get(sym ast.SymbolID) (qual.Qualifier, bool) {
	if s.unreachable {
		return qual.SignednessBottom, true
	}
	q, ok := s.quals[sym]
	return q, ok
}

// Set overwrites the qualifier of sym unconditionally.
func (s *State) Set(sym ast.SymbolID, q qual.Qualifier) {
	s.quals[sym] = q
}

// Refine sets sym to q, clamped so the result never leaves declared: a q
// outside declared falls back to declared.
func (s *State) Refine(sym ast.SymbolID, q, declared qual.Qualifier) qual.Qualifier {
	if !qual.IsSubtype(q, declared) {
		q = declared
	}
	s.quals[sym] = q
	return q
}

// MarkUnreachable ends the path (return, break, continue).
func (s *State) MarkUnreachable() {
	s.unreachable = true
}

func (s *State) Unreachable() bool {
	return s.unreachable
}

// Restrict drops the given symbols, typically locals leaving scope.
func (s *State) Restrict(syms []ast.SymbolID) {
	for _, sym := range syms {
		delete(s.quals, sym)
	}
}

// Len returns the number of tracked variables.
func (s *State) Len() int {
	return len(s.quals)
}

// Equal reports whether two states describe the same path facts.
func (s *State) Equal(other *State) bool {
	if s.unreachable != other.unreachable {
		return false
	}
	if s.unreachable {
		return true
	}
	if len(s.quals) != len(other.quals) {
		return false
	}
	for sym, q := range s.quals {
		if oq, ok := other.quals[sym]; !ok || oq != q {
			return false
		}
	}
	return true
}

// Merge joins the states of paths that reconverge. Unreachable inputs
// contribute nothing; if every input is unreachable so is the result. A
// variable known on only some paths keeps the join of the paths that know it.
func Merge(states ...*State) *State {
	merged := NewState()
	reachable := 0
	for _, st := range states {
		if st == nil || st.unreachable {
			continue
		}
		reachable++
		for sym, q := range st.quals {
			if prev, ok := merged.quals[sym]; ok {
				merged.quals[sym] = qual.Join(prev, q)
			} else {
				merged.quals[sym] = q
			}
		}
	}
	if reachable == 0 {
		merged.unreachable = true
	}
	return merged
}

// Symbols lists the tracked variables in ascending id order.
func (s *State) Symbols() []ast.SymbolID {
	out := make([]ast.SymbolID, 0, len(s.quals))
	for sym := range s.quals {
		out = append(out, sym)
	}
	slices.Sort(out)
	return out
}
