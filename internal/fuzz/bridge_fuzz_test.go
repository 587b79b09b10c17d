package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"jsparse/internal/bridge"
	"jsparse/internal/diagfmt"
	"jsparse/internal/options"
	"jsparse/internal/source"
	"jsparse/internal/testkit"
)

// taskTimeout is the maximum time allowed for one task. A task running
// longer indicates a hang in the engine or the bridge.
const taskTimeout = 5 * time.Second

func FuzzSubmitDeliversOnce(f *testing.F) {
	addSourceSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		text, _, err := source.Decode(input)
		if err != nil {
			return
		}

		reg := source.NewRegistry()
		b := bridge.New(bridge.Options{Concurrency: 1, Registry: reg, MaxDiagnostics: 64, RetainSources: true})
		raw, err := options.Encode(options.Default(), options.FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
		name := "fuzz.js"
		p := b.Submit(string(text), raw, &name)

		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		tree, err := p.Wait(ctx)
		if ctx.Err() != nil {
			t.Fatalf("task did not finish within %v (state %s)", taskTimeout, p.State())
		}
		if p.State() != bridge.StateDelivered {
			t.Fatalf("state = %s after delivery", p.State())
		}

		if err != nil {
			var terr *bridge.TaskError
			if !errors.As(err, &terr) {
				t.Fatalf("error %T is not a *bridge.TaskError", err)
			}
			if terr.Kind != bridge.KindParseDiagnostic {
				t.Fatalf("unexpected failure kind %s: %s", terr.Kind, terr.Message)
			}
			return
		}

		prog, err := diagfmt.DecodeProgram(tree)
		if err != nil {
			t.Fatalf("delivered tree does not decode: %v", err)
		}
		if err := testkit.CheckSpanInvariants(prog, text); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzDecodeOptions(f *testing.F) {
	addConfigSeeds(f)
	f.Fuzz(func(t *testing.T, raw []byte) {
		opts, err := options.Decode(clampInput(raw))
		if err != nil {
			var derr *options.DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("error %T is not a *options.DecodeError", err)
			}
			return
		}
		if err := opts.Validate(); err != nil {
			t.Fatalf("decoded options fail validation: %v", err)
		}
		for _, format := range []options.Format{options.FormatJSON, options.FormatMsgpack} {
			buf, err := options.Encode(opts, format)
			if err != nil {
				t.Fatalf("encode %s: %v", format, err)
			}
			again, err := options.Decode(buf)
			if err != nil {
				t.Fatalf("re-decode %s: %v", format, err)
			}
			if again != opts {
				t.Fatalf("%s round trip changed options: %+v -> %+v", format, opts, again)
			}
		}
	})
}
