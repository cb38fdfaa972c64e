// Package annot provides declared signedness qualifiers for declarations that
// carry no annotation in source: parameters, locals and function results of
// code the checker cannot see into.
package annot

import (
	"maps"
	"slices"
	"strings"

	"signcheck/internal/qual"
)

// ReturnName is the pseudo-variable naming a unit's result.
const ReturnName = "return"

// Store maps declaration keys to declared qualifiers. Missing keys yield
// UnknownSignedness.
type Store interface {
	LookupDeclaredQualifier(key string) qual.Qualifier
}

// Key builds the lookup key for variable name of unit.
func Key(unit, name string) string {
	return unit + "." + name
}

// ReturnKey builds the lookup key for the result of unit.
func ReturnKey(unit string) string {
	return Key(unit, ReturnName)
}

// MapStore is an in-memory Store.
type MapStore map[string]qual.Qualifier

func NewMapStore() MapStore {
	return MapStore{}
}

func (m MapStore) LookupDeclaredQualifier(key string) qual.Qualifier {
	if q, ok := m[key]; ok {
		return q
	}
	return qual.UnknownSignedness
}

// Lookup reports whether key is present.
func (m MapStore) Lookup(key string) (qual.Qualifier, bool) {
	q, ok := m[key]
	return q, ok
}

func (m MapStore) Set(key string, q qual.Qualifier) {
	m[key] = q
}

// Merge copies every entry of other into m; entries of other win.
func (m MapStore) Merge(other MapStore) {
	maps.Copy(m, other)
}

// Units lists the distinct unit names mentioned by keys, sorted.
func (m MapStore) Units() []string {
	seen := map[string]struct{}{}
	for k := range m {
		if i := strings.LastIndexByte(k, '.'); i > 0 {
			seen[k[:i]] = struct{}{}
		}
	}
	var units []string
	for u := range seen {
		units = append(units, u)
	}
	slices.Sort(units)
	return units
}

// Empty is a Store with no entries.
var Empty Store = MapStore(nil)
