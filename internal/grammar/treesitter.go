package grammar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"jsparse/internal/ast"
	"jsparse/internal/diag"
	"jsparse/internal/source"
)

// TreeSitter is the default engine. It builds the tree with the tree-sitter
// JavaScript/TypeScript grammars and, when the tree is clean, reports early
// errors found by esbuild.
type TreeSitter struct {
	// SkipEarlyErrors disables the esbuild pass.
	SkipEarlyErrors bool
}

func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

const treeSitterName = "tree-sitter(javascript@0.23.1,typescript@0.23.2)"

// Name identifies the grammars and whether the early error pass runs.
func (e *TreeSitter) Name() string {
	if e.SkipEarlyErrors {
		return treeSitterName
	}
	return treeSitterName + "+esbuild@0.27.2"
}

func (e *TreeSitter) Parse(_ context.Context, req Request) (*ast.Program, error) {
	if req.File == nil {
		return nil, errors.New("grammar: request without source")
	}
	if req.Reporter == nil {
		return nil, errors.New("grammar: request without reporter")
	}

	dialect := DialectOf(req.Options)
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(dialect.language()); err != nil {
		return nil, fmt.Errorf("grammar: load %s language: %w", dialect, err)
	}

	tree := parser.Parse(req.File.Content, nil)
	if tree == nil {
		return nil, fmt.Errorf("grammar: %s parser returned no tree", dialect)
	}
	defer tree.Close()

	root := tree.RootNode()
	conv := &converter{req: req, src: req.File.Content, dialect: dialect}
	prog := conv.program(root)

	if conv.errors == 0 && root.HasError() {
		conv.report(diag.SynInvalidSyntax, req.span(0, req.File.Size), "source could not be parsed")
	}
	if conv.errors == 0 && !e.SkipEarlyErrors {
		checkEarlyErrors(req, dialect)
	}
	return prog, nil
}

type converter struct {
	req      Request
	src      []byte
	dialect  Dialect
	errors   int
	jsxDepth int
}

func (c *converter) program(root *sitter.Node) *ast.Program {
	prog := &ast.Program{
		Type: ast.ProgramScript,
		Span: ast.Span{Start: 0, End: c.req.File.Size},
		Body: []*ast.Node{},
	}
	if c.req.Options.IsModule {
		prog.Type = ast.ProgramModule
	}

	cur := root.Walk()
	defer cur.Close()
	if !cur.GotoFirstChild() {
		return prog
	}
	for {
		n := cur.Node()
		if n.Kind() == "hash_bang_line" {
			prog.Interpreter = strings.TrimPrefix(n.Utf8Text(c.src), "#!")
		} else if node := c.visit(cur, true); node != nil {
			prog.Body = append(prog.Body, node)
		}
		if !cur.GotoNextSibling() {
			break
		}
	}
	return prog
}

func (c *converter) visit(cur *sitter.TreeCursor, topLevel bool) *ast.Node {
	n := cur.Node()
	field := cur.FieldName()
	span := c.span(n)
	kind := n.Kind()

	switch {
	case n.IsError():
		c.report(diag.SynUnexpectedToken, c.req.span(span.Start, span.End), unexpectedMessage(n.Utf8Text(c.src)))
		return nil
	case n.IsMissing():
		c.report(diag.SynExpectToken, c.req.span(span.Start, span.End), expectedMessage(kind, n.IsNamed()))
		return nil
	case kind == "comment" || kind == "html_comment":
		c.req.Comments.Add(span, n.Utf8Text(c.src))
		return nil
	case !n.IsNamed() && field == "":
		return nil
	}

	c.check(kind, span, topLevel)
	if isJSXElement(kind) {
		c.jsxDepth++
		defer func() { c.jsxDepth-- }()
	}

	node := &ast.Node{Type: kind, Span: span, Field: field}
	if n.ChildCount() == 0 {
		if n.IsNamed() {
			node.Text = n.Utf8Text(c.src)
		}
		return node
	}
	if cur.GotoFirstChild() {
		for {
			if child := c.visit(cur, false); child != nil {
				node.Children = append(node.Children, child)
			}
			if !cur.GotoNextSibling() {
				break
			}
		}
		cur.GotoParent()
	}
	return node
}

// check applies the mode and dialect rules the grammars do not enforce.
func (c *converter) check(kind string, span ast.Span, topLevel bool) {
	opts := c.req.Options
	at := c.req.span(span.Start, span.End)
	switch {
	case topLevel && !opts.IsModule && (kind == "import_statement" || kind == "export_statement"):
		c.report(diag.SynModuleSyntaxInScript, at, "'import' and 'export' may only appear in a module")
	case opts.IsModule && kind == "with_statement":
		c.report(diag.SynWithInModule, at, "'with' statements are not allowed in strict mode")
	case isJSXElement(kind) && c.jsxDepth == 0 && !c.dialect.AllowsJSX(opts):
		c.report(diag.SynJSXNotEnabled, at, "JSX syntax requires the jsx option")
	case kind == "decorator" && !opts.Decorators:
		c.report(diag.SynDecoratorsNotEnabled, at, "decorators require the decorators option")
	}
}

func (c *converter) report(code diag.Code, at source.Span, msg string) {
	c.errors++
	diag.ReportError(c.req.Reporter, code, at, msg).Emit()
}

func (c *converter) span(n *sitter.Node) ast.Span {
	start, err := safecast.Conv[uint32](n.StartByte())
	if err != nil {
		panic(fmt.Errorf("node start overflow: %w", err))
	}
	end, err := safecast.Conv[uint32](n.EndByte())
	if err != nil {
		panic(fmt.Errorf("node end overflow: %w", err))
	}
	return ast.Span{Start: start, End: end}
}

func isJSXElement(kind string) bool {
	return kind == "jsx_element" || kind == "jsx_self_closing_element"
}

const snippetLimit = 24

func unexpectedMessage(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if text == "" {
		return "unexpected end of input"
	}
	if len(text) > snippetLimit {
		text = text[:snippetLimit] + "..."
	}
	return "unexpected " + strconv.Quote(text)
}

func expectedMessage(kind string, named bool) string {
	if named {
		return "expected " + strings.ReplaceAll(kind, "_", " ")
	}
	return "expected " + strconv.Quote(kind)
}
