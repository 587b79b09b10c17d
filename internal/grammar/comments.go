package grammar

import (
	"strings"

	"jsparse/internal/ast"
)

// Comments collects the comments of one attempt. It is created per attempt
// and never shared between tasks.
type Comments struct {
	items []ast.Comment
}

func NewComments() *Comments {
	return &Comments{}
}

// Add records a comment from its raw text, delimiters included.
func (c *Comments) Add(span ast.Span, raw string) {
	if c == nil {
		return
	}
	kind := ast.CommentLine
	text := raw
	switch {
	case strings.HasPrefix(raw, "/*"):
		kind = ast.CommentBlock
		text = strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
	case strings.HasPrefix(raw, "//"):
		text = strings.TrimPrefix(raw, "//")
	case strings.HasPrefix(raw, "<!--"):
		text = strings.TrimPrefix(raw, "<!--")
	case strings.HasPrefix(raw, "-->"):
		text = strings.TrimPrefix(raw, "-->")
	}
	c.items = append(c.items, ast.Comment{Kind: kind, Span: span, Text: text})
}

func (c *Comments) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Take returns the collected comments and empties the collector. The result
// is never nil so an enabled capture always yields a comments list.
func (c *Comments) Take() []ast.Comment {
	if c == nil {
		return nil
	}
	out := c.items
	if out == nil {
		out = []ast.Comment{}
	}
	c.items = nil
	return out
}
