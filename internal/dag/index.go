package dag

import (
	"sort"
)

type NodeID uint32

// Edge is a directed edge From -> To between named nodes.
type Edge struct {
	From string
	To   string
}

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные имена, sort.Strings, раздать ID по порядку
func BuildIndex(names []string, edges []Edge) Index {
	uniq := make(map[string]struct{}, len(names)+len(edges))
	for _, name := range names {
		if name != "" {
			uniq[name] = struct{}{}
		}
	}
	for _, e := range edges {
		if e.From != "" {
			uniq[e.From] = struct{}{}
		}
		if e.To != "" {
			uniq[e.To] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(uniq))
	for name := range uniq {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	nameToID := make(map[string]NodeID, len(sorted))
	for i, name := range sorted {
		nameToID[name] = NodeID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: sorted,
	}
}

// Names maps ids back to node names.
func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
