package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jsparse/internal/diag"
	"jsparse/internal/source"
)

const tabWidth = 4

type palette struct {
	err    *color.Color
	warn   *color.Color
	info   *color.Color
	note   *color.Color
	gutter *color.Color
	caret  *color.Color
	bold   *color.Color
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
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue),
		gutter: mk(color.FgBlue, color.Bold),
		caret:  mk(color.FgRed),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics in human-readable form. It walks bag.Items()
// in order (callers sort the bag first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <sev>[<CODE>]: <message>
//
// followed by the source line with a ^~~~ marker under the span, then notes.
func Pretty(w io.Writer, bag *diag.Bag, reg *source.Registry, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeDiagnostic(w, d, reg, opts, p)
	}
}

// Summary renders diagnostics without colour, the form carried by task
// failures.
func Summary(bag *diag.Bag, reg *source.Registry) string {
	var sb strings.Builder
	Pretty(&sb, bag, reg, PrettyOpts{ShowNotes: true})
	return strings.TrimRight(sb.String(), "\n")
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, reg *source.Registry, opts PrettyOpts, p palette) {
	f := reg.Get(d.Primary.File)
	start, end := source.LineCol{Line: 1, Col: 1}, source.LineCol{Line: 1, Col: 1}
	if f != nil {
		start, end = f.Resolve(d.Primary)
	}

	label := fmt.Sprintf("%s[%s]", strings.ToLower(d.Severity.String()), d.Code.ID())
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		formatPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col,
		p.severity(d.Severity).Sprint(label), p.bold.Sprint(d.Message))

	if f != nil && f.Content != nil {
		writeSnippet(w, f, start, end, opts.Context, p)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := reg.Get(n.Span.File)
		pos := source.LineCol{Line: 1, Col: 1}
		if nf != nil {
			pos, _ = nf.Resolve(n.Span)
		}
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
			formatPath(nf, opts.PathMode, opts.BaseDir), pos.Line, pos.Col, n.Msg)
	}
}

func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, ctxLines int8, p palette) {
	first := start.Line
	if ctxLines > 0 {
		first = uint32(max(1, int(start.Line)-int(ctxLines)))
	}
	gutter := len(strconv.FormatUint(uint64(start.Line), 10))

	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutter, ln), expandTabs(f.GetLine(ln)))
	}

	line := f.GetLine(start.Line)
	col0 := min(int(start.Col-1), len(line))
	endCol0 := len(line)
	if end.Line == start.Line {
		endCol0 = min(max(int(end.Col-1), col0), len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:col0]))
	width := max(1, runewidth.StringWidth(expandTabs(line[col0:endCol0])))
	marker := "^" + strings.Repeat("~", width-1)

	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutter, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
