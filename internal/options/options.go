// Package options decodes the parse configuration buffer handed to the bridge.
package options

import (
	"fmt"
	"slices"
	"strings"
)

// Syntax selects the source dialect family.
type Syntax string

const (
	SyntaxECMAScript Syntax = "ecmascript"
	SyntaxTypeScript Syntax = "typescript"
)

// Target is the language edition the source must conform to.
type Target string

const (
	ES3    Target = "es3"
	ES5    Target = "es5"
	ES2015 Target = "es2015"
	ES2016 Target = "es2016"
	ES2017 Target = "es2017"
	ES2018 Target = "es2018"
	ES2019 Target = "es2019"
	ES2020 Target = "es2020"
	ES2021 Target = "es2021"
	ES2022 Target = "es2022"
	ESNext Target = "esnext"
)

var targets = []Target{ES3, ES5, ES2015, ES2016, ES2017, ES2018, ES2019, ES2020, ES2021, ES2022, ESNext}

// Targets lists every accepted edition, oldest first.
func Targets() []Target {
	return slices.Clone(targets)
}

// ParseOptions is the decoded, validated parse configuration.
type ParseOptions struct {
	Syntax     Syntax `json:"syntax" msgpack:"syntax"`
	JSX        bool   `json:"jsx" msgpack:"jsx"`
	TSX        bool   `json:"tsx" msgpack:"tsx"`
	Decorators bool   `json:"decorators" msgpack:"decorators"`
	Target     Target `json:"target" msgpack:"target"`
	IsModule   bool   `json:"isModule" msgpack:"isModule"`
	Comments   bool   `json:"comments" msgpack:"comments"`
}

// Default returns the configuration used for fields a buffer omits.
func Default() ParseOptions {
	return ParseOptions{
		Syntax:   SyntaxECMAScript,
		Target:   ESNext,
		IsModule: true,
	}
}

// TypeScript reports whether the TypeScript grammar is selected.
func (o ParseOptions) TypeScript() bool {
	return o.Syntax == SyntaxTypeScript
}

// Validate checks value ranges and dialect combinations.
func (o ParseOptions) Validate() error {
	switch o.Syntax {
	case SyntaxECMAScript, SyntaxTypeScript:
	default:
		return fmt.Errorf("unknown syntax %q (expected %s or %s)", o.Syntax, SyntaxECMAScript, SyntaxTypeScript)
	}
	if !slices.Contains(targets, o.Target) {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = string(t)
		}
		return fmt.Errorf("unknown target %q (expected one of %s)", o.Target, strings.Join(names, ", "))
	}
	if o.TSX && o.Syntax != SyntaxTypeScript {
		return fmt.Errorf("tsx requires syntax %q", SyntaxTypeScript)
	}
	if o.JSX && o.Syntax == SyntaxTypeScript {
		return fmt.Errorf("jsx is an ecmascript option; use tsx with syntax %q", SyntaxTypeScript)
	}
	return nil
}

func (o ParseOptions) String() string {
	var sb strings.Builder
	sb.WriteString(string(o.Syntax))
	if o.JSX {
		sb.WriteString("+jsx")
	}
	if o.TSX {
		sb.WriteString("+tsx")
	}
	if o.Decorators {
		sb.WriteString("+decorators")
	}
	sb.WriteString("/")
	sb.WriteString(string(o.Target))
	if o.IsModule {
		sb.WriteString("/module")
	} else {
		sb.WriteString("/script")
	}
	if o.Comments {
		sb.WriteString("/comments")
	}
	return sb.String()
}
