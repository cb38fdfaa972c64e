package diag

import (
	"sort"
)

// Bag is an append-only, ordered sequence of diagnostics for one analysis run.
// It does not deduplicate or suppress anything.
type Bag struct {
	items []Diagnostic
}

func NewBag(capHint int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, capHint)}
}

// Report implements Reporter so a Bag can be handed to producers directly.
func (b *Bag) Report(d Diagnostic) {
	b.Add(d)
}

// Add appends d.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Drain returns every accumulated diagnostic and leaves the bag empty.
func (b *Bag) Drain() []Diagnostic {
	out := b.items
	b.items = nil
	return out
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends the diagnostics of other in their order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// AddAll appends ds in order.
func (b *Bag) AddAll(ds []Diagnostic) {
	b.items = append(b.items, ds...)
}

// Sort orders by file, start, end, severity (desc) and code for output.
// The checker itself never sorts: emission order is already deterministic.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}
