package lexer_test

import (
	"strings"
	"testing"

	"signcheck/internal/diag"
	"signcheck/internal/lexer"
	"signcheck/internal/source"
	"signcheck/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sgn", []byte(input))
	bag := diag.NewBag(8)
	return lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func expectKinds(t *testing.T, input string, want ...token.Kind) []token.Token {
	t.Helper()
	lx, bag := makeTestLexer(input)
	toks := lx.All()
	got := kinds(toks)
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %v, want %v (all: %v)", input, i, got[i], want[i], got)
		}
	}
	if bag.HasErrors() {
		t.Fatalf("%q: unexpected diagnostics %v", input, bag.Items())
	}
	return toks
}

func TestFunctionHeader(t *testing.T) {
	toks := expectKinds(t, "fn f(x: @signed int) -> @unsigned u32 {",
		token.KwFn, token.Ident, token.LParen, token.Ident, token.Colon, token.At, token.Ident,
		token.Ident, token.RParen, token.Arrow, token.At, token.Ident, token.Ident, token.LBrace)
	if toks[6].Text != "signed" {
		t.Fatalf("annotation text = %q", toks[6].Text)
	}
}

func TestShiftOperatorsAreGreedy(t *testing.T) {
	expectKinds(t, "a >>> b >> c << d >>>= e >>= f <<= g > h",
		token.Ident, token.Ushr, token.Ident, token.Shr, token.Ident, token.Shl, token.Ident,
		token.UshrAssign, token.Ident, token.ShrAssign, token.Ident, token.ShlAssign, token.Ident,
		token.Gt, token.Ident)
}

func TestAcknowledgedCast(t *testing.T) {
	toks := expectKinds(t, "x to! @unsigned", token.Ident, token.KwTo, token.Bang, token.At, token.Ident)
	if toks[1].Span.End != toks[2].Span.Start {
		t.Fatalf("`to!` must be adjacent: %v %v", toks[1].Span, toks[2].Span)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	expectKinds(t, "a // line\n/* block /* nested */ */ b", token.Ident, token.Ident)
}

func TestIntegerLiterals(t *testing.T) {
	toks := expectKinds(t, "0 42 1_000 0xFF 0b1010", token.IntLit, token.IntLit, token.IntLit, token.IntLit, token.IntLit)
	want := []uint64{0, 42, 1000, 255, 10}
	for i, w := range want {
		v, err := lexer.ParseInt(toks[i].Text)
		if err != nil || v != w {
			t.Fatalf("ParseInt(%q) = %d, %v; want %d", toks[i].Text, v, err, w)
		}
	}
}

func TestBadLiterals(t *testing.T) {
	for _, input := range []string{"12ab", "0x", "99999999999999999999999", "1__0"} {
		lx, bag := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != token.Invalid {
			t.Fatalf("%q: kind = %v, want invalid", input, tok.Kind)
		}
		if bag.Count(diag.LexBadNumber) != 1 {
			t.Fatalf("%q: expected one LexBadNumber, got %v", input, bag.Items())
		}
	}
}

func TestUnknownCharacter(t *testing.T) {
	lx, bag := makeTestLexer("a $ b")
	got := kinds(lx.All())
	if len(got) != 4 || got[1] != token.Invalid {
		t.Fatalf("kinds = %v", got)
	}
	if bag.Count(diag.LexUnknownChar) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	lx, bag := makeTestLexer("a /* never closed")
	if got := kinds(lx.All()); len(got) != 2 {
		t.Fatalf("kinds = %v", got)
	}
	if bag.Count(diag.LexUnterminatedCm) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestIdentifiersAreNFCNormalised(t *testing.T) {
	// "é" composed vs "e" + combining acute
	toks := expectKinds(t, "caf\u00e9 cafe\u0301", token.Ident, token.Ident)
	if toks[0].Text != toks[1].Text {
		t.Fatalf("expected equal normalised text, got %q and %q", toks[0].Text, toks[1].Text)
	}
	if toks[1].Span.Len() != uint32(len("cafe\u0301")) {
		t.Fatalf("span must cover original bytes, got %v", toks[1].Span)
	}
}

func TestTokenTooLong(t *testing.T) {
	lx, bag := makeTestLexer(strings.Repeat("a", 1<<12+1) + " b")
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("expected invalid token, got %v", tok.Kind)
	}
	if bag.Count(diag.LexTokenTooLong) != 1 {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if next := lx.Next(); next.Kind != token.EOF {
		t.Fatalf("expected EOF after long token, got %v", next.Kind)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("let x")
	if p := lx.Peek(); p.Kind != token.KwLet {
		t.Fatalf("Peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Kind != token.KwLet {
		t.Fatalf("Next after Peek = %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.Ident {
		t.Fatalf("second Next = %v", n.Kind)
	}
}
