package parser

import (
	"fmt"
	"strings"
	"testing"

	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.Builder, Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sgn", []byte(src))
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(id, ast.Hints{})
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := ParseFile(lx, b, Options{Reporter: rep})
	return b, res, bag
}

func mustParse(t *testing.T, src string) (*ast.Builder, Result) {
	t.Helper()
	b, res, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return b, res
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

// bodyStmts returns the top-level statements of the first unit.
func bodyStmts(t *testing.T, b *ast.Builder) []ast.StmtID {
	t.Helper()
	ids := b.UnitIDs()
	if len(ids) == 0 {
		t.Fatalf("no units parsed")
	}
	blk := b.Stmts.Block(b.Unit(ids[0]).Body)
	if blk == nil {
		t.Fatalf("unit has no body")
	}
	return blk.Stmts
}

func parseSourceWithLimit(t *testing.T, src string, limit uint) (*ast.Builder, Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sgn", []byte(src))
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(id, ast.Hints{})
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	res := ParseFile(lx, b, Options{Reporter: rep, MaxErrors: limit})
	return b, res, bag
}
