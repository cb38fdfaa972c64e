package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"signcheck/internal/diag"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

const sample = "fn f(s: @signed) {\n\tlet u: @unsigned = s;\n\ts to @unsigned;\n}\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/test.sgn", []byte(sample))

	at := func(text string) source.Span {
		idx := strings.Index(sample, text)
		if idx < 0 {
			t.Fatalf("%q not in sample", text)
		}
		return source.Span{File: id, Start: uint32(idx), End: uint32(idx + len(text))}
	}

	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.SgnSubtypeViolation, at("s;"), "cannot initialize 'u' (Unsigned) with a Signed value").
		WithQuals(qual.Unsigned, qual.Signed).
		WithNote(at("u:"), "declared @unsigned here"))
	bag.Add(diag.NewError(diag.SgnUncheckedNarrowingCast, at("s to @unsigned"), "cast from Signed to Unsigned narrows without acknowledgment").
		WithQuals(qual.Signed, qual.Unsigned).
		WithFix("acknowledge narrowing cast", diag.FixEdit{Span: at("to"), NewText: "to!", OldText: "to"}))
	return bag, fs
}

func TestPrettyPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.sgn:2:"},
		{"relative", PathModeAuto, "src/test.sgn:2:"},
		{"basename", PathModeBasename, "test.sgn:2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Fatalf("expected %q in output:\n%s", tt.contains, out)
			}
			if !strings.Contains(out, "ERROR SGN3005") {
				t.Fatalf("missing severity and code:\n%s", out)
			}
		})
	}
}

func TestPrettyCaretUnderTabs(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Max: 1})
	lines := strings.Split(buf.String(), "\n")

	var src, caret string
	for i, l := range lines {
		if strings.HasPrefix(l, "2 | ") {
			src, caret = l, lines[i+1]
			break
		}
	}
	if src == "" {
		t.Fatalf("no source line in output:\n%s", buf.String())
	}
	// the tab expands to four cells, so the caret sits under the s in "= s;"
	col := strings.Index(src, "= s;") + 2
	if strings.Index(caret, "^") != col {
		t.Fatalf("caret misaligned:\n%s\n%s", src, caret)
	}
	if !strings.Contains(buf.String(), "1 more diagnostic(s) not shown") {
		t.Fatalf("expected truncation notice:\n%s", buf.String())
	}
}

func TestPrettyNotesFixesQuals(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowQuals: true})
	out := buf.String()
	for _, want := range []string{
		"note: src/test.sgn:2:6: declared @unsigned here",
		"fix: acknowledge narrowing cast",
		"s to! @unsigned;",
		"[Unsigned, Signed]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes")
	}
}

func TestShort(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, false); err != nil {
		t.Fatalf("Short: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "SubtypeViolation") {
		t.Fatalf("unexpected short output:\n%s", buf.String())
	}
}
