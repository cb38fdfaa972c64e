package qual

import (
	"fmt"
	"strings"
)

// Qualifier is a signedness tag attached to an integer-valued expression.
type Qualifier uint8

const (
	// SignednessBottom is the bottom of the lattice: unreachable code and the literal zero.
	SignednessBottom Qualifier = iota
	// SignedPositive marks signed values known to be non-negative.
	SignedPositive
	// Signed marks values interpreted as two's-complement signed numbers.
	Signed
	// Unsigned marks values interpreted as unsigned numbers.
	Unsigned
	// BitPattern marks values that are manipulated only as bits.
	BitPattern
	// UnknownSignedness is the top of the lattice and the default for unannotated code.
	UnknownSignedness

	numQualifiers = int(UnknownSignedness) + 1
)

// All lists every qualifier, bottom first.
var All = [numQualifiers]Qualifier{
	SignednessBottom,
	SignedPositive,
	Signed,
	Unsigned,
	BitPattern,
	UnknownSignedness,
}

// Top and Bottom of the lattice.
const (
	Top    = UnknownSignedness
	Bottom = SignednessBottom
)

func (q Qualifier) String() string {
	switch q {
	case SignednessBottom:
		return "SignednessBottom"
	case SignedPositive:
		return "SignedPositive"
	case Signed:
		return "Signed"
	case Unsigned:
		return "Unsigned"
	case BitPattern:
		return "BitPattern"
	case UnknownSignedness:
		return "UnknownSignedness"
	default:
		return fmt.Sprintf("Qualifier(%d)", uint8(q))
	}
}

// Annotation returns the spelling used in source annotations.
func (q Qualifier) Annotation() string {
	switch q {
	case SignednessBottom:
		return "@signedness_bottom"
	case SignedPositive:
		return "@signed_positive"
	case Signed:
		return "@signed"
	case Unsigned:
		return "@unsigned"
	case BitPattern:
		return "@bitpattern"
	case UnknownSignedness:
		return "@unknown_signedness"
	default:
		return "@?"
	}
}

// Valid reports whether q is one of the six qualifiers.
func (q Qualifier) Valid() bool {
	return int(q) < numQualifiers
}

var qualifierNames = map[string]Qualifier{
	"signednessbottom":  SignednessBottom,
	"bottom":            SignednessBottom,
	"signedpositive":    SignedPositive,
	"signed":            Signed,
	"unsigned":          Unsigned,
	"bitpattern":        BitPattern,
	"unknownsignedness": UnknownSignedness,
	"unknown":           UnknownSignedness,
}

// Parse accepts CamelCase tags ("SignedPositive"), annotation spellings
// ("@signed_positive") and the short aliases "bottom" and "unknown".
func Parse(s string) (Qualifier, bool) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
	key = strings.ReplaceAll(key, "_", "")
	q, ok := qualifierNames[key]
	return q, ok
}

// MarshalText implements encoding.TextMarshaler.
func (q Qualifier) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("invalid qualifier %d", uint8(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Qualifier) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown qualifier %q", string(text))
	}
	*q = parsed
	return nil
}
