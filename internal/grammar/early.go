package grammar

import (
	"strings"

	"fortio.org/safecast"
	"github.com/evanw/esbuild/pkg/api"

	"jsparse/internal/diag"
	"jsparse/internal/options"
	"jsparse/internal/source"
)

const experimentalDecorators = `{"compilerOptions":{"experimentalDecorators":true}}`

// checkEarlyErrors runs esbuild over a syntactically clean source so that
// early errors (redeclarations, invalid assignment targets, misplaced
// keywords) are reported. esbuild always targets esnext: the edition never
// rejects well-formed source, it is only recorded with the options.
func checkEarlyErrors(req Request, dialect Dialect) {
	opts := api.TransformOptions{
		Loader:     loaderFor(dialect, req.Options),
		Target:     api.ESNext,
		Format:     api.FormatCommonJS,
		Sourcefile: req.File.Path(),
		LogLevel:   api.LogLevelSilent,
	}
	if req.Options.IsModule {
		opts.Format = api.FormatESModule
	}
	if dialect != DialectJavaScript && req.Options.Decorators {
		opts.TsconfigRaw = experimentalDecorators
	}

	result := api.Transform(string(req.File.Content), opts)
	for _, m := range result.Errors {
		if isLoweringMessage(m.Text) {
			continue
		}
		diag.ReportError(req.Reporter, diag.SynEarlyError, messageSpan(req.File, m.Location), m.Text).Emit()
	}
	for _, m := range result.Warnings {
		diag.ReportWarning(req.Reporter, diag.SynEarlyError, messageSpan(req.File, m.Location), m.Text).Emit()
	}
}

// isLoweringMessage reports esbuild failures to rewrite syntax for an older
// environment. They say nothing about the source being valid.
func isLoweringMessage(text string) bool {
	return strings.Contains(text, "not supported yet") ||
		strings.Contains(text, "configured target environment")
}

func loaderFor(dialect Dialect, opts options.ParseOptions) api.Loader {
	switch dialect {
	case DialectTypeScript:
		return api.LoaderTS
	case DialectTSX:
		return api.LoaderTSX
	}
	if opts.JSX {
		return api.LoaderJSX
	}
	return api.LoaderJS
}

// messageSpan maps an esbuild location (1-based line, 0-based byte column)
// onto a file-local span clamped to the file.
func messageSpan(f *source.File, loc *api.Location) source.Span {
	if loc == nil {
		return source.Span{File: f.ID}
	}
	line, err := safecast.Conv[uint32](loc.Line)
	if err != nil {
		return source.Span{File: f.ID}
	}
	col, err := safecast.Conv[uint32](loc.Column)
	if err != nil {
		col = 0
	}
	length, err := safecast.Conv[uint32](loc.Length)
	if err != nil {
		length = 0
	}
	start := f.Offset(line, col)
	end := min(start+length, f.Size)
	return source.Span{File: f.ID, Start: start, End: end}
}
