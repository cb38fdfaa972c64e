package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signcheck/internal/prof"
)

func readProfileOptions(cmd *cobra.Command) (prof.Options, error) {
	var (
		opts prof.Options
		err  error
	)
	flags := cmd.Flags()
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return opts, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return opts, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("trace"); err != nil {
		return opts, fmt.Errorf("failed to get trace flag: %w", err)
	}
	return opts, nil
}

// setupProfiling starts the profiles requested on the command line and
// returns the function that finishes them.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	opts, err := readProfileOptions(cmd)
	if err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("profiling started", "cpu", opts.CPU, "mem", opts.Mem, "trace", opts.Trace)
	return func() {
		if err := session.Stop(); err != nil {
			logger.Warn("failed to finish profiles", "err", err)
		}
	}, nil
}
