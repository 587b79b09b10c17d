package grammar

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"jsparse/internal/options"
)

// Dialect is the grammar selected for an attempt.
type Dialect uint8

const (
	// DialectJavaScript covers ECMAScript with or without JSX.
	DialectJavaScript Dialect = iota
	DialectTypeScript
	DialectTSX
)

func (d Dialect) String() string {
	switch d {
	case DialectJavaScript:
		return "javascript"
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	}
	return "unknown"
}

// DialectOf picks the grammar for validated options.
func DialectOf(opts options.ParseOptions) Dialect {
	switch {
	case opts.TypeScript() && opts.TSX:
		return DialectTSX
	case opts.TypeScript():
		return DialectTypeScript
	default:
		return DialectJavaScript
	}
}

// AllowsJSX reports whether JSX elements are accepted.
func (d Dialect) AllowsJSX(opts options.ParseOptions) bool {
	switch d {
	case DialectTSX:
		return true
	case DialectJavaScript:
		return opts.JSX
	}
	return false
}

var (
	langJavaScript = sync.OnceValue(func() *sitter.Language {
		return sitter.NewLanguage(tsjavascript.Language())
	})
	langTypeScript = sync.OnceValue(func() *sitter.Language {
		return sitter.NewLanguage(tstypescript.LanguageTypescript())
	})
	langTSX = sync.OnceValue(func() *sitter.Language {
		return sitter.NewLanguage(tstypescript.LanguageTSX())
	})
)

func (d Dialect) language() *sitter.Language {
	switch d {
	case DialectTypeScript:
		return langTypeScript()
	case DialectTSX:
		return langTSX()
	default:
		return langJavaScript()
	}
}
