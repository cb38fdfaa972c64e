// Package dag orders small named graphs into dependency waves.
package dag

import (
	"slices"
)

type Graph struct {
	Edges [][]NodeID // Edges[from] = []to
	Indeg []int      // входящие степени для Kahn
}

// BuildGraph adds every edge of edges to a graph over idx. Self loops and
// duplicate edges are dropped, and so are edges naming unknown nodes.
func BuildGraph(idx Index, edges []Edge) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges: make([][]NodeID, nodeCount),
		Indeg: make([]int, nodeCount),
	}
	seen := make(map[[2]NodeID]struct{}, len(edges))
	for _, e := range edges {
		from, ok := idx.NameToID[e.From]
		if !ok {
			continue
		}
		to, ok := idx.NameToID[e.To]
		if !ok || from == to {
			continue
		}
		key := [2]NodeID{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.Edges[from] = append(g.Edges[from], to)
		g.Indeg[to]++
	}
	for from := range g.Edges {
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g
}
