// Package grammar hosts the grammar engines that turn source text into an
// ast.Program, reporting syntax problems through a diag.Reporter.
package grammar

import (
	"context"

	"jsparse/internal/ast"
	"jsparse/internal/diag"
	"jsparse/internal/options"
	"jsparse/internal/source"
)

// Request is the input of one parse attempt.
type Request struct {
	File    *source.File
	Options options.ParseOptions
	// Comments receives comments when capture is enabled; nil otherwise.
	Comments *Comments
	Reporter diag.Reporter
}

// Engine parses one registered source. Implementations must be safe for
// concurrent use by independent attempts. A returned program is only
// meaningful when no error-severity diagnostic was reported.
type Engine interface {
	Parse(ctx context.Context, req Request) (*ast.Program, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req Request) (*ast.Program, error)

func (f EngineFunc) Parse(ctx context.Context, req Request) (*ast.Program, error) {
	return f(ctx, req)
}

func (r Request) span(start, end uint32) source.Span {
	return source.Span{File: r.File.ID, Start: start, End: end}
}

// Named is implemented by engines whose output can be cached. The name must
// change whenever the trees produced for the same input change.
type Named interface {
	Name() string
}

// NameOf returns the engine name, or "" for engines that cannot be cached.
func NameOf(e Engine) string {
	if n, ok := e.(Named); ok {
		return n.Name()
	}
	return ""
}
