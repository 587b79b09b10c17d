package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsparse/internal/trace"
)

// traceCleanup closes the tracer installed by setupTracing.
var traceCleanup func()

// setupTracing builds the tracer selected by the trace flags and attaches it
// to the command context.
func setupTracing(cmd *cobra.Command) error {
	flags := cmd.Flags()

	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// An output without an explicit level traces task lifecycles.
	if level == trace.LevelOff && output != "" {
		level = trace.LevelTask
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.NewContext(cmd.Context(), trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	tracer, err := trace.New(trace.Config{
		Level:    level,
		Mode:     mode,
		Path:     output,
		RingSize: ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.NewContext(cmd.Context(), tracer))

	traceCleanup = func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}
	return nil
}

// startHeartbeat samples load into the command's tracer at the
// --trace-heartbeat interval. The returned heartbeat may be nil.
func startHeartbeat(cmd *cobra.Command, load func() trace.Load) *trace.Heartbeat {
	every, err := cmd.Flags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil
	}
	return trace.StartHeartbeat(trace.FromContext(cmd.Context()), every, load)
}

func closeTracing() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}
