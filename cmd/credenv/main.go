// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/credenv/lib/cmdline"
	"github.com/bureau-foundation/credenv/lib/config"
	"github.com/bureau-foundation/credenv/lib/launch"
	"github.com/bureau-foundation/credenv/lib/logging"
	"github.com/bureau-foundation/credenv/lib/process"
	"github.com/bureau-foundation/credenv/lib/sysexec"
	"github.com/bureau-foundation/credenv/lib/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run returns the exit status. It only returns at all when the program
// could not be executed; adapter is nil outside tests.
func run(args []string, stdout, stderr io.Writer, adapter *sysexec.Adapter) int {
	result := cmdline.Parse(args)
	switch result.Action {
	case cmdline.ActionHelp:
		cmdline.WriteUsage(stdout)
		return 0
	case cmdline.ActionVersion:
		fmt.Fprintf(stdout, "%s %s\n", cmdline.ProgramName, version.Info())
		return 0
	case cmdline.ActionUsageError:
		process.Report(stderr, result.Err)
		fmt.Fprintln(stderr)
		cmdline.WriteUsage(stderr)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		process.Report(stderr, err)
		return process.ExitCode(err)
	}
	logOptions, err := logging.ParseOptions(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		process.Report(stderr, fmt.Errorf("configuration: %w", err))
		return 1
	}
	logger := logging.New(stderr, logOptions).With("component", cmdline.ProgramName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	replacer := &launch.Replacer{
		Config:  cfg,
		Adapter: adapter,
		Logger:  logger,
	}
	if err := replacer.Run(ctx, result.Command); err != nil {
		process.Report(stderr, err)
		return process.ExitCode(err)
	}
	return 0
}
