package qual

import "math/bits"

// Edge is a direct subtype relation Sub <: Super.
type Edge struct {
	Sub   Qualifier
	Super Qualifier
}

// Edges is the Hasse diagram of the lattice. BitPattern shares no edge with the
// Signed/Unsigned family, so the two only meet at top and bottom.
var Edges = [...]Edge{
	{Sub: SignednessBottom, Super: SignedPositive},
	{Sub: SignedPositive, Super: Signed},
	{Sub: SignednessBottom, Super: Unsigned},
	{Sub: SignednessBottom, Super: BitPattern},
	{Sub: Signed, Super: UnknownSignedness},
	{Sub: Unsigned, Super: UnknownSignedness},
	{Sub: BitPattern, Super: UnknownSignedness},
}

// set is a bitmask over qualifiers.
type set uint8

func (s set) has(q Qualifier) bool { return s&(1<<q) != 0 }

var (
	subtype     [numQualifiers][numQualifiers]bool
	ancestors   [numQualifiers]set // reflexive
	descendants [numQualifiers]set // reflexive
)

func init() {
	for _, q := range All {
		subtype[q][q] = true
	}
	for _, e := range Edges {
		subtype[e.Sub][e.Super] = true
	}
	// Floyd–Warshall closure; the matrix is never touched afterwards.
	for k := 0; k < numQualifiers; k++ {
		for i := 0; i < numQualifiers; i++ {
			for j := 0; j < numQualifiers; j++ {
				if subtype[i][k] && subtype[k][j] {
					subtype[i][j] = true
				}
			}
		}
	}
	for i := 0; i < numQualifiers; i++ {
		for j := 0; j < numQualifiers; j++ {
			if subtype[i][j] {
				ancestors[i] |= 1 << j
				descendants[j] |= 1 << i
			}
		}
	}
}

// IsSubtype reports whether a <: b.
func IsSubtype(a, b Qualifier) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return subtype[a][b]
}

// IsUnrelated reports whether neither qualifier is a subtype of the other.
func IsUnrelated(a, b Qualifier) bool {
	return !IsSubtype(a, b) && !IsSubtype(b, a)
}

// Join returns the least upper bound of a and b.
func Join(a, b Qualifier) Qualifier {
	if !a.Valid() || !b.Valid() {
		return Top
	}
	common := ancestors[a] & ancestors[b]
	if q, ok := extremum(common, func(c Qualifier) set { return descendants[c] }); ok {
		return q
	}
	return Top
}

// Meet returns the greatest lower bound of a and b.
func Meet(a, b Qualifier) Qualifier {
	if !a.Valid() || !b.Valid() {
		return Bottom
	}
	common := descendants[a] & descendants[b]
	if q, ok := extremum(common, func(c Qualifier) set { return ancestors[c] }); ok {
		return q
	}
	return Bottom
}

// JoinAll folds Join over qs; the join of nothing is bottom.
func JoinAll(qs ...Qualifier) Qualifier {
	out := Bottom
	for _, q := range qs {
		out = Join(out, q)
	}
	return out
}

// extremum picks the unique element c of common whose strictly-smaller
// (or larger) neighbours, given by below, are all outside common.
func extremum(common set, below func(Qualifier) set) (Qualifier, bool) {
	found := Qualifier(0)
	n := 0
	for _, c := range All {
		if !common.has(c) {
			continue
		}
		if bits.OnesCount8(uint8(below(c)&common)) == 1 {
			found = c
			n++
		}
	}
	return found, n == 1
}
