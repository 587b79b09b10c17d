// Package ast is the syntax tree handed back to callers: a generic tree of
// typed nodes with file-local byte spans.
package ast

import "fmt"

// ProgramType tells whether the source was parsed as a module or a script.
type ProgramType string

const (
	ProgramModule ProgramType = "Module"
	ProgramScript ProgramType = "Script"
)

// Span is a half-open byte range relative to the start of the parsed text.
type Span struct {
	Start uint32
	End   uint32
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Program is the root of a parsed source.
type Program struct {
	Type ProgramType
	Span Span
	Body []*Node
	// Interpreter holds the shebang line without the leading "#!".
	Interpreter string
	// Comments is nil unless comment capture was requested.
	Comments []Comment
}

// Node is one syntax tree node.
type Node struct {
	Type string
	Span Span
	// Field is the role of the node inside its parent, e.g. "name" or "body".
	Field string
	// Text is set for leaves only.
	Text     string
	Children []*Node
}

// CommentKind distinguishes // and /* */ comments.
type CommentKind string

const (
	CommentLine  CommentKind = "Line"
	CommentBlock CommentKind = "Block"
)

type Comment struct {
	Kind CommentKind
	Span Span
	// Text excludes the comment delimiters.
	Text string
}
