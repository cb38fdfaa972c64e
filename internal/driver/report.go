package driver

import (
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/pipeline"
	"signcheck/internal/project"
	"signcheck/internal/sema"
	"signcheck/internal/source"
)

// FileResult is everything one input file produced.
type FileResult struct {
	Path   string
	FileID source.FileID
	Digest project.Digest
	// Builder is nil when the file could not be read or came from the cache.
	Builder *ast.Builder
	// Bag holds load, lex and parse diagnostics; for cached files it holds
	// every diagnostic of the file.
	Bag   *diag.Bag
	Units []*sema.Result
	// Cached reports that the results were replayed from the disk cache.
	Cached bool

	cachedQuals []UnitQualifiers
}

// Diagnostics returns the front-end diagnostics followed by those of each
// unit in declaration order.
func (f *FileResult) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, f.Bag.Len())
	out = append(out, f.Bag.Items()...)
	for _, u := range f.Units {
		if u != nil {
			out = append(out, u.Diagnostics...)
		}
	}
	return out
}

func (f *FileResult) HasErrors() bool {
	if f.Bag.HasErrors() {
		return true
	}
	for _, u := range f.Units {
		if u != nil && u.HasErrors() {
			return true
		}
	}
	return false
}

// Unit returns the result of the unit called name.
func (f *FileResult) Unit(name string) (*sema.Result, bool) {
	for _, u := range f.Units {
		if u != nil && u.Name == name {
			return u, true
		}
	}
	return nil, false
}

// Report is the outcome of one check run.
type Report struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timings pipeline.Timings
}

// Bag merges every diagnostic in file order, then unit order.
func (r *Report) Bag() *diag.Bag {
	bag := diag.NewBag(16)
	for i := range r.Files {
		bag.AddAll(r.Files[i].Diagnostics())
	}
	return bag
}

func (r *Report) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].HasErrors() {
			return true
		}
	}
	return false
}

// File returns the result for path as it was passed in.
func (r *Report) File(path string) (*FileResult, bool) {
	for i := range r.Files {
		if r.Files[i].Path == path {
			return &r.Files[i], true
		}
	}
	return nil, false
}

// UnitCount returns how many units were checked (cached files excluded).
func (r *Report) UnitCount() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Units)
	}
	return n
}
