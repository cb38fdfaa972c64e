package parser

import (
	"testing"

	"signcheck/internal/ast"
	"signcheck/internal/diag"
	"signcheck/internal/qual"
)

func TestParseFnSignature(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantParams []qual.Qualifier
		wantResult bool
		wantReturn qual.Qualifier
	}{
		{"no params", "fn f() {}", nil, false, 0},
		{"annotated param", "fn f(x: @signed int) {}", []qual.Qualifier{qual.Signed}, false, 0},
		{"unannotated param", "fn f(x: int) {}", []qual.Qualifier{qual.UnknownSignedness}, false, 0},
		{"annotation only", "fn f(x: @bitpattern, y: @unsigned u32) {}", []qual.Qualifier{qual.BitPattern, qual.Unsigned}, false, 0},
		{"annotated result", "fn f() -> @signed_positive int { return 1; }", nil, true, qual.SignedPositive},
		{"trailing comma", "fn f(x: @signed,) {}", []qual.Qualifier{qual.Signed}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, res := mustParse(t, tt.input)
			if len(res.Units) != 1 {
				t.Fatalf("units = %d, want 1", len(res.Units))
			}
			u := b.Unit(res.Units[0])
			if u.Name != "f" {
				t.Fatalf("name = %q", u.Name)
			}
			if len(u.Params) != len(tt.wantParams) {
				t.Fatalf("params = %d, want %d", len(u.Params), len(tt.wantParams))
			}
			for i, want := range tt.wantParams {
				if got := b.Symbol(u.Params[i]).Annotation; got != want {
					t.Fatalf("param %d = %v, want %v", i, got, want)
				}
			}
			if u.HasResult != tt.wantResult || (u.HasResult && u.Return != tt.wantReturn) {
				t.Fatalf("result = %v/%v, want %v/%v", u.HasResult, u.Return, tt.wantResult, tt.wantReturn)
			}
		})
	}
}

func TestPrecedenceAndCast(t *testing.T) {
	b, _ := mustParse(t, "fn f(a: @signed, b: @signed) { a + b * 2 to @unsigned; }")
	stmts := bodyStmts(t, b)
	es := b.Stmts.Expr(stmts[0])
	add, ok := b.Exprs.Binary(es.Expr)
	if !ok || add.Op != ast.BinaryAdd {
		t.Fatalf("root must be +, got %+v", add)
	}
	mul, ok := b.Exprs.Binary(add.Right)
	if !ok || mul.Op != ast.BinaryMul {
		t.Fatalf("right of + must be *, got %+v", mul)
	}
	cast, ok := b.Exprs.Cast(mul.Right)
	if !ok || cast.Target != qual.Unsigned || cast.Acknowledged {
		t.Fatalf("right of * must be a plain cast of 2, got %+v", cast)
	}
}

func TestAcknowledgedCastNeedsAdjacentBang(t *testing.T) {
	b, _ := mustParse(t, "fn f(a: @signed) { a to! @unsigned u32; }")
	es := b.Stmts.Expr(bodyStmts(t, b)[0])
	cast, ok := b.Exprs.Cast(es.Expr)
	if !ok || !cast.Acknowledged || cast.KwSpan.Len() != 3 {
		t.Fatalf("expected acknowledged cast, got %+v", cast)
	}

	_, _, bag := parseSource(t, "fn f(a: @signed) { a to ! @unsigned; }")
	if bag.Count(diag.SynExpectType) != 1 {
		t.Fatalf("detached '!' must not acknowledge: %s", diagnosticsSummary(bag))
	}
}

func TestShiftOperators(t *testing.T) {
	b, _ := mustParse(t, "fn f(a: @bitpattern) { a >> 1; a >>> 1; a << 1; a >>>= 2; }")
	stmts := bodyStmts(t, b)
	want := []ast.BinaryOp{ast.BinaryShr, ast.BinaryUshr, ast.BinaryShl}
	for i, op := range want {
		bin, ok := b.Exprs.Binary(b.Stmts.Expr(stmts[i]).Expr)
		if !ok || bin.Op != op {
			t.Fatalf("stmt %d: got %+v, want %v", i, bin, op)
		}
	}
	as := b.Stmts.Assign(stmts[3])
	if as == nil || !as.Compound || as.Op != ast.BinaryUshr {
		t.Fatalf("compound assign = %+v", as)
	}
}

func TestNameResolutionAndShadowing(t *testing.T) {
	b, _ := mustParse(t, `
fn f(x: @signed) {
    let y: @unsigned = 1;
    {
        let y: @bitpattern = x;
        y = 2;
    }
    y = 3;
}`)
	stmts := bodyStmts(t, b)
	outer := b.Stmts.Let(stmts[0]).Symbol
	inner := b.Stmts.Block(stmts[1])
	innerLet := b.Stmts.Let(inner.Stmts[0])
	if innerLet.Symbol == outer {
		t.Fatalf("inner let must declare a new symbol")
	}
	if id, _ := b.Exprs.Ident(innerLet.Value); id.Symbol != b.Unit(b.UnitIDs()[0]).Params[0] {
		t.Fatalf("x must resolve to the parameter")
	}
	innerAssign, _ := b.Exprs.Ident(b.Stmts.Assign(inner.Stmts[1]).Target)
	if innerAssign.Symbol != innerLet.Symbol {
		t.Fatalf("inner assignment must target the shadowing y")
	}
	outerAssign, _ := b.Exprs.Ident(b.Stmts.Assign(stmts[2]).Target)
	if outerAssign.Symbol != outer {
		t.Fatalf("outer assignment must target the outer y")
	}
}

func TestLetInitializerSeesOuterBinding(t *testing.T) {
	b, _ := mustParse(t, "fn f(x: @signed) { let x: @unsigned = x; }")
	let := b.Stmts.Let(bodyStmts(t, b)[0])
	id, _ := b.Exprs.Ident(let.Value)
	if id.Symbol == let.Symbol {
		t.Fatalf("initializer must refer to the parameter, not the new local")
	}
}

func TestControlFlowShapes(t *testing.T) {
	b, _ := mustParse(t, `
fn f(x: @signed) -> @signed {
    if x >= 0 { return x; } else if x < -5 { return 0; } else { x = -x; }
    while x > 0 { x -= 1; if x == 3 { break; } continue; }
    return x;
}`)
	stmts := bodyStmts(t, b)
	ifs := b.Stmts.If(stmts[0])
	if ifs == nil || !ifs.Else.IsValid() || b.Stmts.If(ifs.Else) == nil {
		t.Fatalf("expected else-if chain, got %+v", ifs)
	}
	w := b.Stmts.While(stmts[1])
	if w == nil {
		t.Fatalf("expected while")
	}
	body := b.Stmts.Block(w.Body)
	if k := b.Stmts.Get(body.Stmts[2]).Kind; k != ast.StmtContinue {
		t.Fatalf("last loop stmt = %v, want continue", k)
	}
	if r := b.Stmts.Return(stmts[2]); r == nil || !r.Expr.IsValid() {
		t.Fatalf("expected return x")
	}
}

func TestCalls(t *testing.T) {
	b, res := mustParse(t, `
fn g(a: @unsigned, b: @unsigned) -> @unsigned { return a; }
fn f(x: @unsigned) { let y: @unsigned = g(x, 1); h(); }`)
	if len(res.Units) != 2 {
		t.Fatalf("units = %d", len(res.Units))
	}
	blk := b.Stmts.Block(b.Unit(res.Units[1]).Body)
	call, ok := b.Exprs.Call(b.Stmts.Let(blk.Stmts[0]).Value)
	if !ok || call.Callee != "g" || len(call.Args) != 2 {
		t.Fatalf("call = %+v", call)
	}
	if _, ok := b.Exprs.Call(b.Stmts.Expr(blk.Stmts[1]).Expr); !ok {
		t.Fatalf("unknown callee must still parse as a call")
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"missing semicolon", "fn f() { let x = 1 }", diag.SynExpectSemicolon},
		{"unresolved name", "fn f() { y = 1; }", diag.SynUnresolvedName},
		{"unknown qualifier", "fn f(x: @sined) {}", diag.SynUnknownQualifier},
		{"break outside loop", "fn f() { break; }", diag.SynBreakOutsideLoop},
		{"bad assign target", "fn f(x: @signed) { x + 1 = 2; }", diag.SynAssignTarget},
		{"duplicate local", "fn f() { let a = 1; let a = 2; }", diag.SynDuplicateName},
		{"duplicate fn", "fn f() {} fn f() {}", diag.SynDuplicateName},
		{"unclosed brace", "fn f() { let a = 1;", diag.SynUnclosedBrace},
		{"top level junk", "let x = 1;", diag.SynUnexpectedToken},
		{"missing expression", "fn f() { let a = ; }", diag.SynExpectExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := parseSource(t, tt.input)
			if bag.Count(tt.code) == 0 {
				t.Fatalf("expected %s, got %s", tt.code.ID(), diagnosticsSummary(bag))
			}
		})
	}
}

func TestRecoveryKeepsLaterUnits(t *testing.T) {
	b, res, bag := parseSource(t, `
fn broken( { let = ; }
fn ok(x: @signed) -> @signed { return x; }`)
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
	if _, found := b.LookupUnit("ok"); !found {
		t.Fatalf("unit after an error must still be parsed, units=%v", res.Units)
	}
	id, _ := b.LookupUnit("ok")
	if !b.Unit(id).Body.IsValid() {
		t.Fatalf("ok must have a body")
	}
}

func TestMaxErrors(t *testing.T) {
	b := "fn f() { a; b; c; d; }"
	_, res, bag := parseSourceWithLimit(t, b, 2)
	if bag.Len() != 2 {
		t.Fatalf("reported %d diagnostics, want 2 (%s)", bag.Len(), diagnosticsSummary(bag))
	}
	if res.Errors != 4 {
		t.Fatalf("counted %d errors, want 4", res.Errors)
	}
}
