package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"jsparse/internal/bridge"
	"jsparse/internal/source"
	"jsparse/internal/ui"
)

type parseOutcome struct {
	results []bridge.FileResult
	err     error
}

// runParseWithUI parses files on b while a Bubble Tea model renders the task
// events b sends to events on stderr. It closes events.
func runParseWithUI(ctx context.Context, b *bridge.Bridge, events chan bridge.Event, files []string, config bridge.ConfigFunc, jobs int) ([]bridge.FileResult, error) {
	outcomeCh := make(chan parseOutcome, 1)

	go func() {
		res, err := b.ParseFiles(ctx, files, config, jobs)
		outcomeCh <- parseOutcome{results: res, err: err}
		close(events)
	}()

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = source.Named(f).String()
	}
	model := ui.NewProgressModel("parsing", names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()

	// The UI may stop early; keep draining so workers never block on the sink.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
