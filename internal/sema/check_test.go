package sema

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"signcheck/internal/annot"
	"signcheck/internal/diag"
	"signcheck/internal/qual"
)

func TestBitwiseOnBitPatterns(t *testing.T) {
	src := "fn f(a: @bitpattern, b: @bitpattern) { a & b; }"
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results))

	got, ok := results[0].FinalQualifierAt(spanOf(t, b, src, "a & b", 0))
	if !ok || got != qual.BitPattern {
		t.Fatalf("a & b: expected BitPattern, got %v (found=%v)", got, ok)
	}
}

func TestArithmeticOnBitPattern(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @bitpattern, b: @signed) { a + b; }", nil)
	ds := allDiagnostics(results)
	expectCodes(t, ds, diag.SgnArithmeticOnBitPattern)
	if !reflect.DeepEqual(ds[0].Quals, []qual.Qualifier{qual.BitPattern, qual.Signed}) {
		t.Fatalf("unexpected quals: %v", ds[0].Quals)
	}
}

func TestGuardNarrowsThenBranch(t *testing.T) {
	src := `
fn f(x: @signed) {
	let y: @signed = 0;
	if (x >= 0) {
		y = x / 2;
	}
}`
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results))

	r := results[0]
	if q, _ := r.FinalQualifierAt(spanOf(t, b, src, "x", 2)); q != qual.SignedPositive {
		t.Fatalf("x inside the guarded branch: expected SignedPositive, got %v", q)
	}
	if q, _ := r.FinalQualifierAt(spanOf(t, b, src, "x / 2", 0)); q != qual.SignedPositive {
		t.Fatalf("x / 2: expected SignedPositive, got %v", q)
	}
}

func TestMixedComparison(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @signed, b: @unsigned) { a < b; }", nil)
	ds := allDiagnostics(results)
	expectCodes(t, ds, diag.SgnMixedSignednessComparison)
	if len(ds[0].Notes) != 2 {
		t.Fatalf("expected operand notes, got %+v", ds[0].Notes)
	}
}

func TestNarrowedComparisonIsLegal(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @signed, b: @unsigned) { if (a >= 0) { a < b; } }", nil)
	expectCodes(t, allDiagnostics(results))
}

func TestGuardElseBranch(t *testing.T) {
	src := "fn f(a: @signed, b: @unsigned) { if (a < 0) { return; } else { a < b; } a < b; }"
	_, results := checkSource(t, src, nil)
	// the join after the if keeps a SignedPositive: the then branch returned
	expectCodes(t, allDiagnostics(results))
}

func TestNegatedGuard(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @signed, b: @unsigned) { if (!(a < 0)) { a < b; } else { a < b; } }", nil)
	expectCodes(t, allDiagnostics(results), diag.SgnMixedSignednessComparison)
}

func TestMergeJoinsBranches(t *testing.T) {
	src := `
fn f(x: @signed) {
	let y: @signed = x;
	if (x >= 0) { y = x; } else { y = 1; }
	y;
	y = x;
	if (x >= 0) { y = 1; }
	y;
}`
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results))
	r := results[0]
	if q, _ := r.FinalQualifierAt(head(spanOf(t, b, src, "y;", 0), 1)); q != qual.SignedPositive {
		t.Fatalf("after both branches narrow: expected SignedPositive, got %v", q)
	}
	if q, _ := r.FinalQualifierAt(head(spanOf(t, b, src, "y;", 1), 1)); q != qual.Signed {
		t.Fatalf("after one branch narrows: expected Signed, got %v", q)
	}
}

func TestNarrowingCast(t *testing.T) {
	src := "fn f(a: @signed) { a to @unsigned; a to! @unsigned; if (a >= 0) { a to @unsigned; } a to @unknown; }"
	_, results := checkSource(t, src, nil)
	ds := allDiagnostics(results)
	expectCodes(t, ds, diag.SgnUncheckedNarrowingCast)

	fixes := ds[0].Fixes
	if len(fixes) != 1 || len(fixes[0].Edits) != 1 {
		t.Fatalf("expected one fix with one edit, got %+v", fixes)
	}
	edit := fixes[0].Edits[0]
	if edit.OldText != "to" || edit.NewText != "to!" || edit.Span.Len() != 2 {
		t.Fatalf("unexpected edit %+v", edit)
	}
}

func TestShiftOperands(t *testing.T) {
	src := "fn f(u: @unsigned, s: @signed, p: @bitpattern) { u >> 1; s >>> 1; u >>> 1; s >> 1; p >> 1; p >>> 1; }"
	_, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results), diag.SgnIllegalShiftOperand, diag.SgnIllegalShiftOperand)
}

func TestLetSubtypeViolation(t *testing.T) {
	src := "fn f(s: @signed) { let u: @unsigned = s; let v: @unsigned = 1; let w: @unsigned = -1; }"
	_, results := checkSource(t, src, nil)
	ds := allDiagnostics(results)
	expectCodes(t, ds, diag.SgnSubtypeViolation, diag.SgnSubtypeViolation)
	if len(ds[0].Notes) != 1 {
		t.Fatalf("expected a declaration note, got %+v", ds[0].Notes)
	}
}

func TestAssignmentRefinesWithinDeclared(t *testing.T) {
	src := `
fn f(s: @signed, p: @bitpattern) {
	let x: @signed = s;
	x = 3;
	x;
	x = p;
	x;
}`
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results), diag.SgnSubtypeViolation)
	r := results[0]
	if q, _ := r.FinalQualifierAt(head(spanOf(t, b, src, "x;", 0), 1)); q != qual.SignedPositive {
		t.Fatalf("after x = 3: expected SignedPositive, got %v", q)
	}
	// a rejected assignment leaves the variable at its declared qualifier
	if q, _ := r.FinalQualifierAt(head(spanOf(t, b, src, "x;", 1), 1)); q != qual.Signed {
		t.Fatalf("after x = p: expected Signed, got %v", q)
	}
}

func TestCompoundAssignment(t *testing.T) {
	src := "fn f(u: @unsigned, p: @bitpattern) { let x: @unsigned = u; x += 1; x >>>= 2; p += 1; p |= 1; }"
	_, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results), diag.SgnArithmeticOnBitPattern)
}

func TestReturnChecksDeclaredResult(t *testing.T) {
	src := "fn f(x: @signed) -> @unsigned { if (x >= 0) { return x to @unsigned; } return x; }"
	_, results := checkSource(t, src, nil)
	ds := allDiagnostics(results)
	expectCodes(t, ds, diag.SgnSubtypeViolation)
	if len(ds[0].Notes) != 1 {
		t.Fatalf("expected a note at the result type, got %+v", ds[0].Notes)
	}
}

func TestUnreachableCodeIsQuiet(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @bitpattern) { return; a + a; }", nil)
	expectCodes(t, allDiagnostics(results))
}

func TestCallArguments(t *testing.T) {
	src := `
fn g(a: @unsigned) -> @unsigned { return a; }
fn f(s: @signed) {
	g(s);
	g(1);
	let x: @signed = g(1);
}`
	_, results := checkSource(t, src, nil)
	expectCodes(t, unitResult(t, results, "g").Diagnostics)
	expectCodes(t, unitResult(t, results, "f").Diagnostics, diag.SgnSubtypeViolation, diag.SgnSubtypeViolation)
}

func TestStubQualifiers(t *testing.T) {
	store := annot.NewMapStore()
	store.Set(annot.Key("f", "x"), qual.BitPattern)
	store.Set(annot.ReturnKey("ext"), qual.BitPattern)

	_, results := checkSource(t, "fn f(x: int) { x + 1; ext() - 1; }", store)
	expectCodes(t, allDiagnostics(results), diag.SgnArithmeticOnBitPattern, diag.SgnArithmeticOnBitPattern)

	// without stubs everything unannotated is unknown and nothing is rejected
	_, results = checkSource(t, "fn f(x: int) { x + 1; }", nil)
	expectCodes(t, allDiagnostics(results))
}

func TestAnnotationWinsOverStub(t *testing.T) {
	store := annot.NewMapStore()
	store.Set(annot.Key("f", "x"), qual.BitPattern)
	_, results := checkSource(t, "fn f(x: @signed) { x + 1; }", store)
	expectCodes(t, allDiagnostics(results))
}

func TestLoopReachesFixpoint(t *testing.T) {
	src := `
fn f(n: @signed) {
	let i: @signed = 0;
	while (i < n) {
		i = i + 1;
	}
	i;
}`
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results))
	if q, _ := results[0].FinalQualifierAt(head(spanOf(t, b, src, "i;", 0), 1)); q != qual.SignedPositive {
		t.Fatalf("after the loop: expected SignedPositive, got %v", q)
	}
}

func TestLoopReportsFromHeadState(t *testing.T) {
	// x is only Signed from the second iteration on, and the violation
	// must still be reported exactly once.
	src := "fn f(u: @unsigned) { let x = 0; while (u > 0) { x < u; x = x - 1; } }"
	_, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results), diag.SgnMixedSignednessComparison)
}

func TestLoopBreakAndContinue(t *testing.T) {
	src := `
fn f(s: @signed, u: @unsigned) {
	let x: @signed = 1;
	while (u > 0) {
		if (u > 5) { x = s; break; }
		if (u > 3) { continue; }
		x = 2;
	}
	x < u;
}`
	_, results := checkSource(t, src, nil)
	// x is Signed on the break path
	expectCodes(t, allDiagnostics(results), diag.SgnMixedSignednessComparison)
}

func TestLoopLocalsDoNotEscape(t *testing.T) {
	src := "fn f(u: @unsigned) { while (u > 0) { let t: @signed = 1; if (u > 2) { break; } } }"
	_, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results))
}

func TestCheckIsIdempotent(t *testing.T) {
	src := `
fn g(a: @unsigned) -> @unsigned { return a; }
fn f(s: @signed, u: @unsigned, p: @bitpattern) {
	let x = s;
	while (u > 0) { x = x - 1; s < u; }
	g(s) + p;
	s to @unsigned;
}`
	b := parseUnits(t, src)
	for _, id := range b.UnitIDs() {
		first := CheckUnit(b, id, Options{})
		second := CheckUnit(b, id, Options{})
		if !reflect.DeepEqual(first.Diagnostics, second.Diagnostics) {
			t.Fatalf("unit %s: diagnostics differ between runs:\n%s\n%s", first.Name, codeList(first.Diagnostics), codeList(second.Diagnostics))
		}
		if !reflect.DeepEqual(first.ExprQuals, second.ExprQuals) {
			t.Fatalf("unit %s: qualifiers differ between runs", first.Name)
		}
	}
}

func TestFinalQualifierDefaults(t *testing.T) {
	_, results := checkSource(t, "fn f() {}", nil)
	if q := results[0].FinalQualifier(12345); q != qual.UnknownSignedness {
		t.Fatalf("unreached expression: expected UnknownSignedness, got %v", q)
	}
	if results[0].HasErrors() {
		t.Fatalf("empty unit has no errors")
	}
}

func TestGuardAgainstNonZeroConstantDoesNotNarrow(t *testing.T) {
	src := "fn f(x: @signed) { if (x >= 5) { let p: @signed_positive = x; } }"
	b, results := checkSource(t, src, nil)
	expectCodes(t, allDiagnostics(results), diag.SgnSubtypeViolation)
	if q, _ := results[0].FinalQualifierAt(spanOf(t, b, src, "x", 2)); q != qual.Signed {
		t.Fatalf("x inside the branch: expected Signed, got %v", q)
	}

	_, results = checkSource(t, "fn f(x: @signed) { if (x >= 0) { let p: @signed_positive = x; } }", nil)
	expectCodes(t, allDiagnostics(results))
}

func TestEqualityOnBitPattern(t *testing.T) {
	_, results := checkSource(t, "fn f(a: @bitpattern, s: @signed, u: @unsigned) { a == s; a != 0; s == u; }", nil)
	expectCodes(t, allDiagnostics(results), diag.SgnArithmeticOnBitPattern, diag.SgnArithmeticOnBitPattern)
}

func TestUnsettledLoopFallsBackToDeclared(t *testing.T) {
	src := `
fn f(n: @signed) {
	let x = 0;
	let k = 1;
	while (x < n) {
		x = x - 1;
	}
	x;
	k;
}`
	b := parseUnits(t, src)
	for _, tt := range []struct {
		name     string
		maxIter  int
		wantX    qual.Qualifier
		wantKeep qual.Qualifier
	}{
		{"settled", 0, qual.Signed, qual.SignedPositive},
		{"one pass", 1, qual.UnknownSignedness, qual.SignedPositive},
	} {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Check(context.Background(), b, Options{MaxLoopIterations: tt.maxIter})
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			expectCodes(t, allDiagnostics(results))
			if q, _ := results[0].FinalQualifierAt(head(spanOf(t, b, src, "x;", 0), 1)); q != tt.wantX {
				t.Fatalf("x after the loop: expected %v, got %v", tt.wantX, q)
			}
			// k is never assigned in the loop and keeps its entry qualifier
			if q, _ := results[0].FinalQualifierAt(head(spanOf(t, b, src, "k;", 0), 1)); q != tt.wantKeep {
				t.Fatalf("k after the loop: expected %v, got %v", tt.wantKeep, q)
			}
		})
	}
}

func TestFinalQualifierAtIsSafeForConcurrentReaders(t *testing.T) {
	src := "fn f(a: @signed, b: @signed) { a + b; }"
	b, results := checkSource(t, src, nil)
	span := spanOf(t, b, src, "a + b", 0)
	var wg sync.WaitGroup
	for _i := 0; _i < 8; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q, ok := results[0].FinalQualifierAt(span); !ok || q != qual.Signed {
				t.Errorf("a + b: got %v (found=%v)", q, ok)
			}
		}()
	}
	wg.Wait()
}
