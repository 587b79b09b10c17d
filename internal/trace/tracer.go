package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer is a sink for events. Emit must be safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	// Close flushes buffered events and releases the output.
	Close() error
}

type nop struct{}

func (nop) Emit(Event) {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }

// Nop drops every event.
var Nop Tracer = nop{}

// Mode selects where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // written as they happen
	ModeRing                   // kept in memory, dumped on Close
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream", "":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	default:
		return 0, fmt.Errorf("invalid trace mode: %q (expected: stream|ring)", s)
	}
}

// Config describes the tracer built by New.
type Config struct {
	Level Level
	Mode  Mode
	// Path is the output file; "" or "-" is stderr. Paths ending in .ndjson
	// or .json get NDJSON, anything else text.
	Path string
	// Output overrides Path when set. It is not closed.
	Output   io.Writer
	RingSize int
}

// New builds the tracer for cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := FormatText
	if strings.HasSuffix(cfg.Path, ".ndjson") || strings.HasSuffix(cfg.Path, ".json") {
		format = FormatNDJSON
	}

	w, closer := cfg.Output, io.Closer(nil)
	if w == nil {
		switch cfg.Path {
		case "", "-":
			w = os.Stderr
		default:
			f, err := os.Create(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace output: %w", err)
			}
			w, closer = f, f
		}
	}

	switch cfg.Mode {
	case ModeStream, 0:
		return &Stream{w: w, closer: closer, level: cfg.Level, format: format}, nil
	case ModeRing:
		r := NewRing(cfg.RingSize, cfg.Level)
		r.out, r.closer, r.format = w, closer, format
		return r, nil
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
	}
}
