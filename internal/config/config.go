// Package config loads the settings of the jsparse command line: built-in
// defaults, then jsparse.toml, then JSPARSE_* environment variables, then
// explicitly set flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"jsparse/internal/options"
)

// FileName is the settings file looked up from the working directory upward.
const FileName = "jsparse.toml"

// EnvPrefix prefixes environment overrides, e.g. JSPARSE_PARSE_TARGET.
const EnvPrefix = "JSPARSE_"

// SyntaxAuto picks the syntax from the file extension.
const SyntaxAuto = "auto"

// Config is the merged CLI configuration.
type Config struct {
	Parse  ParseSettings  `koanf:"parse"`
	Output OutputSettings `koanf:"output"`

	// File is the settings file that was loaded, if any.
	File string `koanf:"-"`
}

// ParseSettings become the parse configuration buffer of each file.
type ParseSettings struct {
	Syntax     string `koanf:"syntax"`
	JSX        bool   `koanf:"jsx"`
	TSX        bool   `koanf:"tsx"`
	Decorators bool   `koanf:"decorators"`
	Target     string `koanf:"target"`
	Script     bool   `koanf:"script"`
	Comments   bool   `koanf:"comments"`
}

type OutputSettings struct {
	Format         string `koanf:"format"`
	Color          string `koanf:"color"`
	UI             string `koanf:"ui"`
	Jobs           int    `koanf:"jobs"`
	MaxDiagnostics int    `koanf:"max_diagnostics"`
	Cache          bool   `koanf:"cache"`
	Timings        bool   `koanf:"timings"`
	Quiet          bool   `koanf:"quiet"`
}

func defaults() map[string]any {
	return map[string]any{
		"parse.syntax":           SyntaxAuto,
		"parse.jsx":              false,
		"parse.tsx":              false,
		"parse.decorators":       false,
		"parse.target":           string(options.ESNext),
		"parse.script":           false,
		"parse.comments":         false,
		"output.format":          "json",
		"output.color":           "auto",
		"output.ui":              "auto",
		"output.jobs":            0,
		"output.max_diagnostics": 100,
		"output.cache":           false,
		"output.timings":         false,
		"output.quiet":           false,
	}
}

// flagKeys maps flag names to configuration keys. Flags missing here are not
// configuration (e.g. trace flags).
var flagKeys = map[string]string{
	"syntax":          "parse.syntax",
	"jsx":             "parse.jsx",
	"tsx":             "parse.tsx",
	"decorators":      "parse.decorators",
	"target":          "parse.target",
	"script":          "parse.script",
	"comments":        "parse.comments",
	"format":          "output.format",
	"color":           "output.color",
	"ui":              "output.ui",
	"jobs":            "output.jobs",
	"max-diagnostics": "output.max_diagnostics",
	"cache":           "output.cache",
	"timings":         "output.timings",
	"quiet":           "output.quiet",
}

// Load merges every configuration layer. explicit names a settings file and
// disables the upward search; startDir is where the search begins. flags may
// be nil.
func Load(explicit, startDir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := explicit
	if path == "" {
		found, ok, err := FindFile(startDir)
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), TOML()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// JSPARSE_OUTPUT_MAX_DIAGNOSTICS -> output.max_diagnostics
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return &cfg, nil
}

// FindFile searches startDir and its parents for FileName.
func FindFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

var (
	formats = []string{"json", "pretty", "summary", "tree"}
	modes   = []string{"auto", "on", "off"}
)

// Validate checks enumerated values. Parse settings are validated per file
// when they are turned into options.
func (c *Config) Validate() error {
	if !slices.Contains(formats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (expected %s)", c.Output.Format, strings.Join(formats, "|"))
	}
	if !slices.Contains(modes, c.Output.Color) {
		return fmt.Errorf("invalid color mode %q (expected auto|on|off)", c.Output.Color)
	}
	if !slices.Contains(modes, c.Output.UI) {
		return fmt.Errorf("invalid ui mode %q (expected auto|on|off)", c.Output.UI)
	}
	if c.Output.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Output.Jobs)
	}
	if c.Output.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must be >= 0, got %d", c.Output.MaxDiagnostics)
	}
	switch c.Parse.Syntax {
	case SyntaxAuto, string(options.SyntaxECMAScript), string(options.SyntaxTypeScript):
	default:
		return fmt.Errorf("invalid syntax %q (expected auto|ecmascript|typescript)", c.Parse.Syntax)
	}
	return nil
}

// OptionsFor builds the parse options of one file. With syntax "auto" the
// extension decides: .ts/.mts/.cts select TypeScript, .tsx adds TSX and
// .jsx enables JSX.
func (p ParseSettings) OptionsFor(path string) (options.ParseOptions, error) {
	opts := options.Default()
	opts.Target = options.Target(p.Target)
	opts.IsModule = !p.Script
	opts.Comments = p.Comments
	opts.Decorators = p.Decorators
	opts.JSX = p.JSX
	opts.TSX = p.TSX

	switch p.Syntax {
	case string(options.SyntaxTypeScript):
		opts.Syntax = options.SyntaxTypeScript
	case string(options.SyntaxECMAScript):
		opts.Syntax = options.SyntaxECMAScript
	default:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ts", ".mts", ".cts":
			opts.Syntax = options.SyntaxTypeScript
			opts.JSX = false
		case ".tsx":
			opts.Syntax = options.SyntaxTypeScript
			opts.TSX = true
			opts.JSX = false
		case ".jsx":
			opts.JSX = true
		}
	}
	if err := opts.Validate(); err != nil {
		return options.ParseOptions{}, err
	}
	return opts, nil
}
