// Package testkit holds checks shared by tests of the parse pipeline.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"jsparse/internal/ast"
)

// CheckSpanInvariants runs the span invariants of a delivered tree against
// the text it was parsed from:
// 1) the program span lies within the content
// 2) every node span lies within its parent's span
// 3) siblings start in source order
// 4) comments lie within the program span
func CheckSpanInvariants(p *ast.Program, content []byte) error {
	if p == nil {
		return fmt.Errorf("nil program")
	}
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	if p.Span.End < p.Span.Start {
		return fmt.Errorf("program span is inverted: %v", p.Span)
	}
	if p.Span.End > size {
		return fmt.Errorf("program span end beyond content: %d > %d", p.Span.End, size)
	}
	if err := checkChildren(p.Body, p.Span, "body"); err != nil {
		return err
	}
	for i, c := range p.Comments {
		if !p.Span.Contains(c.Span) {
			return fmt.Errorf("comment %d span %v is outside program span %v", i, c.Span, p.Span)
		}
	}
	return nil
}

func checkChildren(nodes []*ast.Node, parent ast.Span, path string) error {
	var prev uint32
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", path, i)
		if n == nil {
			return fmt.Errorf("%s: nil node", at)
		}
		if n.Span.End < n.Span.Start {
			return fmt.Errorf("%s (%s): inverted span %v", at, n.Type, n.Span)
		}
		if !parent.Contains(n.Span) {
			return fmt.Errorf("%s (%s): span %v is outside parent span %v", at, n.Type, n.Span, parent)
		}
		if n.Span.Start < prev {
			return fmt.Errorf("%s (%s): starts at %d before its previous sibling (%d)", at, n.Type, n.Span.Start, prev)
		}
		prev = n.Span.Start
		if err := checkChildren(n.Children, n.Span, at+"."+n.Type); err != nil {
			return err
		}
	}
	return nil
}
