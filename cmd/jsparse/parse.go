package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jsparse/internal/ast"
	"jsparse/internal/bridge"
	"jsparse/internal/cache"
	"jsparse/internal/config"
	"jsparse/internal/diag"
	"jsparse/internal/diagfmt"
	"jsparse/internal/options"
	"jsparse/internal/source"
	"jsparse/internal/trace"
)

const stdinPath = "-"

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file|directory|->...",
		Short: "Parse sources and print their syntax trees",
		Long: `Parse JavaScript or TypeScript sources. Directories are searched for
source files; "-" reads a single anonymous source from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}

	f := cmd.Flags()
	f.String("syntax", config.SyntaxAuto, "source syntax (auto|ecmascript|typescript)")
	f.Bool("jsx", false, "enable JSX in ECMAScript sources")
	f.Bool("tsx", false, "enable TSX in TypeScript sources")
	f.Bool("decorators", false, "allow decorators")
	f.String("target", string(options.ESNext), "language edition the source must conform to")
	f.Bool("script", false, "parse as a script instead of a module")
	f.Bool("comments", false, "attach comments to the tree")
	f.String("config-json", "", "raw parse configuration buffer, used as is for every file")
	f.String("format", "json", "output format (json|pretty|summary|tree)")
	f.Int("jobs", 0, "max files parsed in parallel (0=auto)")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.Bool("cache", false, "reuse trees from the on-disk cache")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	settingsPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(settingsPath, ".", cmd.Flags())
	if err != nil {
		return err
	}
	rawConfig, err := cmd.Flags().GetString("config-json")
	if err != nil {
		return err
	}
	mode, err := readUIMode(cfg.Output.UI)
	if err != nil {
		return err
	}

	reg := source.NewRegistry()
	opts := bridge.Options{
		Concurrency:    cfg.Output.Jobs,
		Registry:       reg,
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
		Tracer:         trace.FromContext(cmd.Context()),
		RetainSources:  true,
	}
	if cfg.Output.Cache {
		c, err := cache.OpenDefault("jsparse")
		if err != nil {
			return err
		}
		opts.Cache = c
	}

	configFor := func(path string) ([]byte, error) {
		if rawConfig != "" {
			return []byte(rawConfig), nil
		}
		popts, err := cfg.Parse.OptionsFor(path)
		if err != nil {
			return nil, err
		}
		return options.Encode(popts, options.FormatJSON)
	}

	stdin := len(args) == 1 && args[0] == stdinPath
	var files []string
	if !stdin {
		files, err = bridge.ListFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no source files found")
		}
	}
	var events chan bridge.Event
	useTUI := !stdin && shouldUseTUI(mode, len(files))
	if useTUI {
		events = make(chan bridge.Event, 256)
		opts.Progress = bridge.ChannelSink{Ch: events}
	}
	b := bridge.New(opts)
	heartbeat := startHeartbeat(cmd, b.Load)
	defer heartbeat.Stop()

	ctx := cmd.Context()
	var results []bridge.FileResult
	switch {
	case stdin:
		results, err = parseStdin(ctx, cmd.InOrStdin(), b, configFor)
	case useTUI:
		results, err = runParseWithUI(ctx, b, events, files, configFor, cfg.Output.Jobs)
	default:
		results, err = b.ParseFiles(ctx, files, configFor, cfg.Output.Jobs)
	}
	if err != nil {
		return err
	}
	return writeResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, reg, results)
}

// parseStdin submits stdin as an anonymous source with the options of an
// extensionless file.
func parseStdin(ctx context.Context, r io.Reader, b *bridge.Bridge, config bridge.ConfigFunc) ([]bridge.FileResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	text, _, err := source.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	buf, err := config(stdinPath)
	if err != nil {
		return []bridge.FileResult{{Path: stdinPath, Err: err}}, nil
	}
	p := b.Submit(string(text), buf, nil)
	out, err := p.Await(ctx)
	if err != nil {
		return nil, err
	}
	return []bridge.FileResult{{Path: stdinPath, Tree: out.Value, Err: out.Err, Timings: p.Timings()}}, nil
}

func writeResults(out, errOut io.Writer, cfg *config.Config, reg *source.Registry, results []bridge.FileResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			reportFailure(errOut, cfg, reg, r)
		}
	}

	var err error
	switch cfg.Output.Format {
	case "json":
		err = writeJSON(out, results, false)
	case "pretty":
		err = writeJSON(out, results, true)
	case "tree":
		err = writeTrees(out, reg, results, cfg.Output.Quiet)
	case "summary":
		err = writeSummary(out, results, cfg.Output.Quiet)
	}
	if err != nil {
		return err
	}

	if cfg.Output.Timings {
		for _, r := range results {
			printTimings(errOut, r.Path, r.Timings)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func reportFailure(w io.Writer, cfg *config.Config, reg *source.Registry, r bridge.FileResult) {
	var setErr *diag.SetError
	if !errors.As(r.Err, &setErr) {
		fmt.Fprintf(w, "%s: %v\n", displayPath(r.Path), r.Err)
		return
	}
	if cfg.Output.Format == "json" {
		if err := diagfmt.JSON(w, setErr.Bag, reg, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              cfg.Output.MaxDiagnostics,
		}); err != nil {
			fmt.Fprintf(w, "%s: %v\n", displayPath(r.Path), err)
		}
		return
	}
	diagfmt.Pretty(w, setErr.Bag, reg, diagfmt.PrettyOpts{
		Color:     useColor(cfg.Output.Color),
		Context:   2,
		ShowNotes: true,
	})
}

// writeJSON prints one tree as is, or an object keyed by path when several
// files were parsed. Failed files map to null.
func writeJSON(w io.Writer, results []bridge.FileResult, indent bool) error {
	if len(results) == 1 {
		r := results[0]
		if r.Err != nil {
			return nil
		}
		if !indent {
			_, err := fmt.Fprintln(w, r.Tree)
			return err
		}
		return writeIndented(w, json.RawMessage(r.Tree))
	}

	trees := make(map[string]json.RawMessage, len(results))
	for _, r := range results {
		if r.Err != nil {
			trees[r.Path] = json.RawMessage("null")
			continue
		}
		trees[r.Path] = json.RawMessage(r.Tree)
	}
	if !indent {
		enc := json.NewEncoder(w)
		return enc.Encode(trees)
	}
	return writeIndented(w, trees)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrees(w io.Writer, reg *source.Registry, results []bridge.FileResult, quiet bool) error {
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		prog, err := diagfmt.DecodeProgram(r.Tree)
		if err != nil {
			return fmt.Errorf("%s: %w", displayPath(r.Path), err)
		}
		if len(results) > 1 && !quiet {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", displayPath(r.Path))
		}
		if err := diagfmt.FormatTree(w, prog, fileFor(reg, r.Path)); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(w io.Writer, results []bridge.FileResult, quiet bool) error {
	ok := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "FAIL %s\n", displayPath(r.Path))
			continue
		}
		ok++
		prog, err := diagfmt.DecodeProgram(r.Tree)
		if err != nil {
			return fmt.Errorf("%s: %w", displayPath(r.Path), err)
		}
		fmt.Fprintf(w, "ok   %s (%s, %d nodes)\n", displayPath(r.Path), prog.Type, ast.Count(prog))
	}
	if !quiet {
		fmt.Fprintf(w, "%d parsed, %d failed\n", ok, len(results)-ok)
	}
	return nil
}

// fileFor returns the retained source of path, or nil when stdin or the
// text is gone.
func fileFor(reg *source.Registry, path string) *source.File {
	id := source.Anonymous()
	if path != stdinPath {
		id = source.Named(path)
	}
	fid, ok := reg.Latest(id)
	if !ok {
		return nil
	}
	return reg.Get(fid)
}

func displayPath(path string) string {
	if path == stdinPath {
		return "<stdin>"
	}
	return path
}
