package qual

import (
	"signcheck/internal/dag"
)

// Levels groups the qualifiers by height in the Hasse diagram, bottom first.
// Qualifiers of one level are ordered by name.
func Levels() [][]Qualifier {
	edges := make([]dag.Edge, 0, len(Edges))
	for _, e := range Edges {
		edges = append(edges, dag.Edge{From: e.Sub.String(), To: e.Super.String()})
	}
	idx := dag.BuildIndex(nil, edges)
	topo := dag.ToposortKahn(dag.BuildGraph(idx, edges))

	out := make([][]Qualifier, 0, len(topo.Batches))
	for _, batch := range topo.Batches {
		level := make([]Qualifier, 0, len(batch))
		for _, name := range idx.Names(batch) {
			q, _ := Parse(name)
			level = append(level, q)
		}
		out = append(out, level)
	}
	return out
}
