package diagfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"jsparse/internal/ast"
)

// EncodeError reports a tree that cannot be serialized faithfully.
type EncodeError struct {
	Path   string // location of the offending node, e.g. body[0].children[2]
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to serialize program: %s", e.Reason)
	}
	return fmt.Sprintf("failed to serialize program: %s at %s", e.Reason, e.Path)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

type spanJSON struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type nodeJSON struct {
	Type     string     `json:"type"`
	Field    string     `json:"field,omitempty"`
	Span     spanJSON   `json:"span"`
	Text     string     `json:"text,omitempty"`
	Children []nodeJSON `json:"children,omitempty"`
}

type commentJSON struct {
	Kind string   `json:"kind"`
	Span spanJSON `json:"span"`
	Text string   `json:"text"`
}

type programJSON struct {
	Type        string         `json:"type"`
	Span        spanJSON       `json:"span"`
	Interpreter string         `json:"interpreter,omitempty"`
	Body        []nodeJSON     `json:"body"`
	Comments    *[]commentJSON `json:"comments,omitempty"`
}

// EncodeProgram validates the span invariants of p and serializes it to
// JSON. Output is deterministic: equal trees encode to equal strings.
func EncodeProgram(p *ast.Program) (string, error) {
	if p == nil {
		return "", &EncodeError{Reason: "nil program"}
	}
	switch p.Type {
	case ast.ProgramModule, ast.ProgramScript:
	default:
		return "", &EncodeError{Reason: fmt.Sprintf("unknown program type %q", p.Type)}
	}
	if p.Span.Start > p.Span.End {
		return "", &EncodeError{Reason: fmt.Sprintf("inverted program span %s", p.Span)}
	}

	out := programJSON{
		Type:        string(p.Type),
		Span:        spanOf(p.Span),
		Interpreter: p.Interpreter,
		Body:        make([]nodeJSON, 0, len(p.Body)),
	}
	for i, n := range p.Body {
		path := "body[" + strconv.Itoa(i) + "]"
		node, err := convertNode(n, p.Span, path)
		if err != nil {
			return "", err
		}
		out.Body = append(out.Body, node)
	}
	if p.Comments != nil {
		comments := make([]commentJSON, 0, len(p.Comments))
		for i, c := range p.Comments {
			if err := checkSpan(c.Span, p.Span, "comments["+strconv.Itoa(i)+"]"); err != nil {
				return "", err
			}
			comments = append(comments, commentJSON{Kind: string(c.Kind), Span: spanOf(c.Span), Text: c.Text})
		}
		out.Comments = &comments
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", &EncodeError{Reason: "json encoding failed", Err: err}
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

func convertNode(n *ast.Node, parent ast.Span, path string) (nodeJSON, error) {
	if n == nil {
		return nodeJSON{}, &EncodeError{Path: path, Reason: "nil node"}
	}
	if n.Type == "" {
		return nodeJSON{}, &EncodeError{Path: path, Reason: "node without type"}
	}
	if err := checkSpan(n.Span, parent, path); err != nil {
		return nodeJSON{}, err
	}
	out := nodeJSON{
		Type:  n.Type,
		Field: n.Field,
		Span:  spanOf(n.Span),
		Text:  n.Text,
	}
	if len(n.Children) > 0 {
		out.Children = make([]nodeJSON, 0, len(n.Children))
		for i, c := range n.Children {
			child, err := convertNode(c, n.Span, path+".children["+strconv.Itoa(i)+"]")
			if err != nil {
				return nodeJSON{}, err
			}
			out.Children = append(out.Children, child)
		}
	}
	return out, nil
}

func checkSpan(s, parent ast.Span, path string) error {
	if s.Start > s.End {
		return &EncodeError{Path: path, Reason: fmt.Sprintf("inverted span %s", s)}
	}
	if !parent.Contains(s) {
		return &EncodeError{Path: path, Reason: fmt.Sprintf("span %s outside parent %s", s, parent)}
	}
	return nil
}

func spanOf(s ast.Span) spanJSON {
	return spanJSON{Start: s.Start, End: s.End}
}

// DecodeProgram parses a tree produced by EncodeProgram.
func DecodeProgram(s string) (*ast.Program, error) {
	var in programJSON
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	p := &ast.Program{
		Type:        ast.ProgramType(in.Type),
		Span:        ast.Span{Start: in.Span.Start, End: in.Span.End},
		Interpreter: in.Interpreter,
		Body:        make([]*ast.Node, 0, len(in.Body)),
	}
	for i := range in.Body {
		p.Body = append(p.Body, nodeFromJSON(&in.Body[i]))
	}
	if in.Comments != nil {
		p.Comments = make([]ast.Comment, 0, len(*in.Comments))
		for _, c := range *in.Comments {
			p.Comments = append(p.Comments, ast.Comment{
				Kind: ast.CommentKind(c.Kind),
				Span: ast.Span{Start: c.Span.Start, End: c.Span.End},
				Text: c.Text,
			})
		}
	}
	return p, nil
}

func nodeFromJSON(in *nodeJSON) *ast.Node {
	n := &ast.Node{
		Type:  in.Type,
		Span:  ast.Span{Start: in.Span.Start, End: in.Span.End},
		Field: in.Field,
		Text:  in.Text,
	}
	if len(in.Children) > 0 {
		n.Children = make([]*ast.Node, 0, len(in.Children))
		for i := range in.Children {
			n.Children = append(n.Children, nodeFromJSON(&in.Children[i]))
		}
	}
	return n
}
