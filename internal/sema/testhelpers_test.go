package sema

import (
	"context"
	"strings"
	"testing"

	"signcheck/internal/annot"
	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/parser"
	"signcheck/internal/source"
)

func parseUnits(t *testing.T, src string) *ast.Builder {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sgn", []byte(src))
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(id, ast.Hints{})
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	parser.ParseFile(lx, b, parser.Options{Reporter: rep})
	if bag.Len() != 0 {
		t.Fatalf("unexpected parse diagnostics: %s", codeList(bag.Items()))
	}
	return b
}

func checkSource(t *testing.T, src string, store annot.Store) (*ast.Builder, []*Result) {
	t.Helper()
	b := parseUnits(t, src)
	results, err := Check(context.Background(), b, Options{Store: store})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return b, results
}

// unitResult returns the result for the unit called name.
func unitResult(t *testing.T, results []*Result, name string) *Result {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result for unit %q", name)
	return nil
}

func allDiagnostics(results []*Result) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, r := range results {
		out = append(out, r.Diagnostics...)
	}
	return out
}

func codeList(ds []diag.Diagnostic) string {
	if len(ds) == 0 {
		return "<none>"
	}
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Code.ID() + " " + d.Message
	}
	return strings.Join(parts, "; ")
}

func expectCodes(t *testing.T, ds []diag.Diagnostic, want ...diag.Code) {
	t.Helper()
	if len(ds) != len(want) {
		t.Fatalf("expected %d diagnostics, got %d: %s", len(want), len(ds), codeList(ds))
	}
	for i, code := range want {
		if ds[i].Code != code {
			t.Fatalf("diagnostic %d: expected %s, got %s", i, code.ID(), codeList(ds))
		}
	}
}

// spanOf returns the span of the nth (0-based) occurrence of text in src.
func spanOf(t *testing.T, b *ast.Builder, src, text string, nth int) source.Span {
	t.Helper()
	offset := 0
	for i := 0; ; i++ {
		idx := strings.Index(src[offset:], text)
		if idx < 0 {
			t.Fatalf("occurrence %d of %q not found", nth, text)
		}
		if i == nth {
			start := offset + idx
			return source.Span{File: b.File, Start: uint32(start), End: uint32(start + len(text))}
		}
		offset += idx + len(text)
	}
}

// head shortens sp to its first n bytes.
func head(sp source.Span, n uint32) source.Span {
	sp.End = sp.Start + n
	return sp
}
