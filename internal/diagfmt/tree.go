package diagfmt

import (
	"fmt"
	"io"
	"strconv"

	"jsparse/internal/ast"
	"jsparse/internal/source"
)

// FormatTree prints a program as an indented tree:
//
//	Module (1:1-1:13)
//	└─ lexical_declaration (1:1-1:13)
//	   ├─ kind: const (1:1-1:6)
//	   ...
//
// Positions are resolved through f when it still holds its text; otherwise
// byte offsets are printed.
func FormatTree(w io.Writer, p *ast.Program, f *source.File) error {
	if p == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := fmt.Fprintf(w, "%s (%s)\n", p.Type, formatSpan(p.Span, f)); err != nil {
		return err
	}
	if p.Interpreter != "" {
		if _, err := fmt.Fprintf(w, "├─ interpreter: %s\n", strconv.Quote(p.Interpreter)); err != nil {
			return err
		}
	}
	for i, n := range p.Body {
		last := i == len(p.Body)-1 && len(p.Comments) == 0
		if err := formatTreeNode(w, n, f, "", last); err != nil {
			return err
		}
	}
	for i, c := range p.Comments {
		branch := "├─ "
		if i == len(p.Comments)-1 {
			branch = "└─ "
		}
		if _, err := fmt.Fprintf(w, "%scomment[%s] %s (%s)\n", branch, c.Kind, strconv.Quote(c.Text), formatSpan(c.Span, f)); err != nil {
			return err
		}
	}
	return nil
}

func formatTreeNode(w io.Writer, n *ast.Node, f *source.File, prefix string, last bool) error {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	label := n.Type
	if n.Field != "" {
		label = n.Field + ": " + label
	}
	if n.Text != "" {
		label += " " + strconv.Quote(n.Text)
	}
	if _, err := fmt.Fprintf(w, "%s%s%s (%s)\n", prefix, branch, label, formatSpan(n.Span, f)); err != nil {
		return err
	}
	for i, c := range n.Children {
		if err := formatTreeNode(w, c, f, prefix+next, i == len(n.Children)-1); err != nil {
			return err
		}
	}
	return nil
}

// formatSpan renders "startLine:startCol-endLine:endCol" when positions can
// be resolved and "span(start-end)" otherwise.
func formatSpan(span ast.Span, f *source.File) string {
	if f != nil && f.Content != nil {
		start, end := f.Resolve(source.Span{File: f.ID, Start: span.Start, End: span.End})
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
