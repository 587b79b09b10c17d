package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jsparse/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsparse",
		Short: "Parse JavaScript and TypeScript into JSON syntax trees",
		Long: `jsparse runs every input through a background parse task and prints
the resulting syntax tree, or the diagnostics that prevented one.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupTracing(cmd); err != nil {
				return err
			}
			return startProfiling(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "settings file (default: jsparse.toml searched upward)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show per-file phase timings")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	pf.String("trace", "", "write trace events to a file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|task|phase)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "sample queued and running tasks at this interval (0 disables)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newParseCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCacheCmd())
	return root
}

// main builds the command tree and executes it. A failing command exits
// with status 1.
func main() {
	err := newRootCmd().Execute()
	stopProfiling()
	closeTracing()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
