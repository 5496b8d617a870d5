package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"statescan/internal/driver"
	"statescan/internal/ui"
)

type tokenizeOutcome struct {
	results []driver.Result
	err     error
}

// runTokenizeWithUI scans files while a progress view runs on stderr.
// Quitting the view early cancels the scan.
func runTokenizeWithUI(ctx context.Context, title string, files []string, opts driver.DirOptions) ([]driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan tokenizeOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.TokenizeFiles(ctx, files, optsCopy)
		outcomeCh <- tokenizeOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// после выхода из UI события больше никто не читает
	cancel()
	go func() {
		for range events {
		}
	}()

	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
