package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"signcheck/internal/diag"
	"signcheck/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, path, caret, fix *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow, color.Bold),
		info:  mk(color.FgCyan, color.Bold),
		note:  mk(color.FgBlue, color.Bold),
		code:  mk(color.Faint),
		path:  mk(color.Bold),
		caret: mk(color.FgGreen, color.Bold),
		fix:   mk(color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид, в порядке bag.Items():
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   |
//	 3 |     let u: @unsigned = s;
//	   |                        ^
//
// затем Notes и Fixes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	for i := 0; i < limit; i++ {
		d := &items[i]
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := pal.severity(d.Severity).Sprint(d.Severity.String()) + " " + pal.code.Sprint(d.Code.ID()) + ": " + d.Message
		if opts.ShowQuals && len(d.Quals) > 0 {
			names := make([]string, len(d.Quals))
			for j, q := range d.Quals {
				names[j] = q.String()
			}
			header += pal.code.Sprint(" [" + strings.Join(names, ", ") + "]")
		}
		fmt.Fprintf(w, "%s: %s\n", pal.path.Sprint(location(fs, d.Primary, opts.PathMode)), header)
		writeSnippet(w, fs, d.Primary, pal)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), location(fs, note.Span, opts.PathMode), note.Msg)
				writeSnippet(w, fs, note.Span, pal)
			}
		}
		if opts.ShowFixes {
			for _, fix := range d.Fixes {
				fmt.Fprintf(w, "  %s %s\n", pal.fix.Sprint("fix:"), fix.Title)
				for _, edit := range fix.Edits {
					preview, err := buildFixEditPreview(fs, edit)
					if err != nil {
						continue
					}
					for _, line := range preview.after {
						fmt.Fprintf(w, "      %s\n", expandTabs(line))
					}
				}
			}
		}
	}
	if hidden := len(items) - limit; hidden > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostic(s) not shown\n", hidden)
	}
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil || int(span.File) >= fs.Len() {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, fs.Get(span.File), mode), start.Line, start.Col)
}

// writeSnippet prints the first line of span with a caret underline. Columns
// are display cells, so wide runes and tabs keep the carets aligned.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, pal palette) {
	if fs == nil || int(span.File) >= fs.Len() {
		return
	}
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := file.GetLine(start.Line)
	if line == "" {
		return
	}

	startByte := min(int(start.Col)-1, len(line))
	endByte := len(line)
	if end.Line == start.Line {
		endByte = min(max(int(end.Col)-1, startByte), len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:startByte]))
	width := max(runewidth.StringWidth(expandTabs(line[startByte:endByte])), 1)

	gutter := len(fmt.Sprint(start.Line))
	blank := strings.Repeat(" ", gutter)
	fmt.Fprintf(w, "%s |\n", blank)
	fmt.Fprintf(w, "%d | %s\n", start.Line, expandTabs(line))
	fmt.Fprintf(w, "%s | %s%s\n", blank, strings.Repeat(" ", pad), pal.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// Short writes the one-line-per-diagnostic format used by golden files.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, withNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, withNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
