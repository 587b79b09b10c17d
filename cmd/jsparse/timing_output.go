package main

import (
	"fmt"
	"io"

	"jsparse/internal/observ"
)

// printTimings writes the phase report of one file.
func printTimings(w io.Writer, path string, report observ.Report) {
	if len(report.Phases) == 0 {
		return
	}
	fmt.Fprintf(w, "timings %s:\n", displayPath(path))
	for _, p := range report.Phases {
		if p.Note != "" {
			fmt.Fprintf(w, "  %-12s %8.2f ms  (%s)\n", p.Name, p.DurationMS, p.Note)
			continue
		}
		fmt.Fprintf(w, "  %-12s %8.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(w, "  %-12s %8.2f ms\n", "total", report.TotalMS)
}
