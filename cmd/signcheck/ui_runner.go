package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"signcheck/internal/driver"
	"signcheck/internal/pipeline"
	"signcheck/internal/ui"
)

type checkOutcome struct {
	report *driver.Report
	err    error
}

// runCheckWithUI runs the check in the background while a Bubble Tea
// program renders its progress events.
func runCheckWithUI(ctx context.Context, title string, files, paths []string, opts driver.Options) (*driver.Report, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = pipeline.ChannelSink{Ch: events}
		report, err := driver.CheckPaths(ctx, paths, runOpts)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// the UI may quit early (ctrl+c); drain so the checker never blocks
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
