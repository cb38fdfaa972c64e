package driver

import (
	"fmt"
	"io"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"signcheck/internal/ast"
	"signcheck/internal/project"
	"signcheck/internal/qual"
	"signcheck/internal/sema"
	"signcheck/internal/source"
)

// qualifierSnapshotVersion - increment when QualifierSnapshot format changes
const qualifierSnapshotVersion = 1

// QualifierSnapshot is the exported final qualifier of every checked
// expression, keyed by byte span.
type QualifierSnapshot struct {
	Version int              `msgpack:"version"`
	Files   []FileQualifiers `msgpack:"files"`
}

type FileQualifiers struct {
	Path   string           `msgpack:"path"`
	Digest project.Digest   `msgpack:"digest"`
	Units  []UnitQualifiers `msgpack:"units"`
}

type UnitQualifiers struct {
	Name  string          `msgpack:"name"`
	Exprs []ExprQualifier `msgpack:"exprs"`
}

// ExprQualifier is the qualifier of the outermost expression spanning
// [Start, End) in the file.
type ExprQualifier struct {
	Start     uint32 `msgpack:"start"`
	End       uint32 `msgpack:"end"`
	Qualifier string `msgpack:"qualifier"`
}

// unitQualifiers flattens one unit result, sorted by position.
func unitQualifiers(b *ast.Builder, res *sema.Result) UnitQualifiers {
	outermost := make(map[source.Span]ast.ExprID, len(res.ExprQuals))
	for id := range res.ExprQuals {
		sp := b.Exprs.Get(id).Span
		if prev, ok := outermost[sp]; !ok || id > prev {
			outermost[sp] = id
		}
	}
	exprs := make([]ExprQualifier, 0, len(outermost))
	for sp, id := range outermost {
		exprs = append(exprs, ExprQualifier{Start: sp.Start, End: sp.End, Qualifier: res.ExprQuals[id].String()})
	}
	sort.Slice(exprs, func(i, j int) bool {
		if exprs[i].Start != exprs[j].Start {
			return exprs[i].Start < exprs[j].Start
		}
		return exprs[i].End > exprs[j].End
	})
	return UnitQualifiers{Name: res.Name, Exprs: exprs}
}

// Qualifiers returns the per-unit qualifiers of the file.
func (f *FileResult) Qualifiers() []UnitQualifiers {
	if f.Cached {
		return f.cachedQuals
	}
	out := make([]UnitQualifiers, 0, len(f.Units))
	for _, u := range f.Units {
		if u != nil {
			out = append(out, unitQualifiers(f.Builder, u))
		}
	}
	return out
}

// Snapshot collects the qualifiers of every file in the report.
func (r *Report) Snapshot() *QualifierSnapshot {
	snap := &QualifierSnapshot{Version: qualifierSnapshotVersion}
	for i := range r.Files {
		f := &r.Files[i]
		snap.Files = append(snap.Files, FileQualifiers{
			Path:   r.FileSet.Get(f.FileID).RelPath(r.FileSet.BaseDir()),
			Digest: f.Digest,
			Units:  f.Qualifiers(),
		})
	}
	return snap
}

// WriteQualifiers encodes the report's snapshot as msgpack.
func WriteQualifiers(w io.Writer, r *Report) error {
	return encodeSnapshot(w, r.Snapshot())
}

func encodeSnapshot(w io.Writer, snap *QualifierSnapshot) error {
	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode qualifiers: %w", err)
	}
	return nil
}

// ReadQualifiers decodes a snapshot written by WriteQualifiers.
func ReadQualifiers(rd io.Reader) (*QualifierSnapshot, error) {
	var snap QualifierSnapshot
	if err := msgpack.NewDecoder(rd).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode qualifiers: %w", err)
	}
	if snap.Version != qualifierSnapshotVersion {
		return nil, fmt.Errorf("unsupported qualifier snapshot version %d", snap.Version)
	}
	for _, f := range snap.Files {
		for _, u := range f.Units {
			for _, e := range u.Exprs {
				if _, ok := qual.Parse(e.Qualifier); !ok {
					return nil, fmt.Errorf("%s: unit %s: unknown qualifier %q", f.Path, u.Name, e.Qualifier)
				}
			}
		}
	}
	return &snap, nil
}

// Lookup finds the qualifier recorded for the span [start, end) of path.
func (s *QualifierSnapshot) Lookup(path string, start, end uint32) (qual.Qualifier, bool) {
	for _, f := range s.Files {
		if f.Path != path {
			continue
		}
		for _, u := range f.Units {
			for _, e := range u.Exprs {
				if e.Start == start && e.End == end {
					return qual.Parse(e.Qualifier)
				}
			}
		}
	}
	return qual.UnknownSignedness, false
}
