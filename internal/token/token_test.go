package token_test

import (
	"testing"

	"signcheck/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	for word, want := range map[string]token.Kind{
		"fn": token.KwFn, "let": token.KwLet, "while": token.KwWhile, "to": token.KwTo,
	} {
		got, ok := token.LookupKeyword(word)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v, %v; want %v", word, got, ok, want)
		}
	}
	for _, word := range []string{"Fn", "LET", "signed", "int", ""} {
		if k, ok := token.LookupKeyword(word); ok {
			t.Fatalf("LookupKeyword(%q) unexpectedly = %v", word, k)
		}
	}
}

func TestClassification(t *testing.T) {
	if !(token.Token{Kind: token.KwReturn}).IsKeyword() {
		t.Fatalf("return must be a keyword")
	}
	if (token.Token{Kind: token.Plus}).IsKeyword() {
		t.Fatalf("+ must not be a keyword")
	}
	for _, k := range []token.Kind{token.Assign, token.PlusAssign, token.UshrAssign} {
		if !(token.Token{Kind: k}).IsAssignOp() {
			t.Fatalf("%v must be an assignment operator", k)
		}
	}
	if (token.Token{Kind: token.EqEq}).IsAssignOp() {
		t.Fatalf("== is not an assignment")
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.Ushr: ">>>", token.UshrAssign: ">>>=", token.Arrow: "->", token.EOF: "end of file",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
