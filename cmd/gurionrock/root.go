/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tochemey/gurionrock/config"
	"github.com/tochemey/gurionrock/log"
	"github.com/tochemey/gurionrock/output"
	"github.com/tochemey/gurionrock/simulation"
)

type runOptions struct {
	logLevel string
	output   string
}

// newRootCmd creates the command running one simulation
func newRootCmd() *cobra.Command {
	opts := new(runOptions)
	cmd := &cobra.Command{
		Use:           "gurionrock <configuration file>",
		Short:         "Run the GurionRock perception simulation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, args[0], opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}

	cmd.SetContext(context.Background())
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.output, "output", "", "output file, overrides the configuration. A .zst or .br extension compresses it")
	return cmd
}

func run(ctx context.Context, path string, opts *runOptions) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	logger := log.NewZap(level, os.Stdout)
	defer func() { _ = logger.Flush() }()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if opts.output != "" {
		cfg.OutputFile = opts.output
	}

	sim, err := simulation.New(cfg,
		simulation.WithLogger(logger),
		simulation.WithWriter(output.NewFileWriter(cfg.OutputPath(), output.WithLogger(logger))))
	if err != nil {
		return err
	}

	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	logger.Infof("simulation %s, output written to %s", report.Outcome, cfg.OutputPath())
	return nil
}
