// Package driver runs one parse attempt of a registered source.
package driver

import (
	"context"
	"errors"
	"strconv"

	"jsparse/internal/ast"
	"jsparse/internal/diag"
	"jsparse/internal/grammar"
	"jsparse/internal/options"
	"jsparse/internal/source"
	"jsparse/internal/trace"
)

var errNoProgram = errors.New("grammar engine returned no program")

// Execute parses file with engine inside a fresh diagnostic scope. Comments
// are collected only when opts.Comments is set and are attached to the
// returned program. A failed attempt returns a *diag.SetError.
func Execute(ctx context.Context, engine grammar.Engine, file *source.File, opts options.ParseOptions, maxDiagnostics int) (*ast.Program, error) {
	phase := trace.TaskFrom(ctx).Phase("execute")

	var comments *grammar.Comments
	if opts.Comments {
		comments = grammar.NewComments()
	}

	req := grammar.Request{
		File:     file,
		Options:  opts,
		Comments: comments,
	}
	prog, err := diag.TryWithHandler(diag.HandlerOpts{MaxDiagnostics: maxDiagnostics, File: file.ID},
		func(h *diag.Handler) (*ast.Program, error) {
			req.Reporter = h
			p, err := engine.Parse(ctx, req)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, errNoProgram
			}
			return p, nil
		})
	if err != nil {
		phase.End("failed")
		return nil, err
	}

	if comments != nil {
		prog.Comments = comments.Take()
	}
	if phase != nil {
		phase.End("nodes=" + strconv.Itoa(ast.Count(prog)))
	}
	return prog, nil
}
