package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ripple/internal/driver"
	"ripple/internal/ui"
)

type inferOutcome struct {
	results []*driver.UnitResult
	err     error
}

// runDirectory processes every unit under dir, either behind the interactive
// progress display or as a plain parallel run.
func runDirectory(cmd *cobra.Command, dir string, opts driver.Options, format string) ([]*driver.UnitResult, error) {
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}

	// JSON output goes to stdout, so the TUI would corrupt it.
	if format == "json" || !shouldUseTUI(mode) {
		return driver.InferDir(cmd.Context(), dir, opts)
	}
	return runInferWithUI(cmd, dir, opts)
}

func runInferWithUI(cmd *cobra.Command, dir string, opts driver.Options) ([]*driver.UnitResult, error) {
	units, err := driver.CollectUnits(dir, opts.Config.UnitSuffix)
	if err != nil {
		return nil, err
	}

	sink := driver.NewChannelSink(256)
	outcomeCh := make(chan inferOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Sink = sink
		results, runErr := driver.InferDir(cmd.Context(), dir, runOpts)
		outcomeCh <- inferOutcome{results: results, err: runErr}
		close(sink.C)
	}()

	model := ui.NewProgressModel("ripple infer "+dir, units, sink.C)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
