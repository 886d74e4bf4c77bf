// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch runs credenv's pipeline for one parsed command line:
// load the Secretfile, open the secret source, materialize every
// declaration, and replace the process with the target program.
//
// Stages run strictly in that order and the first failure ends the
// run. Nothing is retried. A cancelled context stops the run before
// the next declaration and before the exec. When the exec succeeds,
// [Replacer.Run] never returns.
package launch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/credenv/lib/cmdline"
	"github.com/bureau-foundation/credenv/lib/config"
	"github.com/bureau-foundation/credenv/lib/materialize"
	"github.com/bureau-foundation/credenv/lib/provider"
	"github.com/bureau-foundation/credenv/lib/secretfile"
	"github.com/bureau-foundation/credenv/lib/secretsource"
	"github.com/bureau-foundation/credenv/lib/sysexec"
)

// Replacer carries the dependencies of one run. Only Config is
// required.
type Replacer struct {
	// Config supplies the secret source. It is validated only when
	// the manifest declares something.
	Config *config.Config

	// Adapter performs chmod and exec. Nil means the real system
	// calls. When its Environ is nil, the program inherits
	// Environment.
	Adapter *sysexec.Adapter

	// Environment receives materialized variables. Nil means the
	// process environment.
	Environment materialize.Environment

	// OpenSource constructs the secret backend. Nil means
	// secretsource.Open.
	OpenSource func(context.Context, config.SourceConfig) (secretsource.Source, error)

	// Logger receives stage progress. Nil discards.
	Logger *slog.Logger
}

// Run executes the pipeline for command.
func (r *Replacer) Run(ctx context.Context, command cmdline.Command) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	environment := r.Environment
	if environment == nil {
		environment = materialize.ProcessEnvironment{}
	}
	adapter := r.adapter(environment)

	manifest, err := loadManifest(command.ManifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	logger.Debug("loaded manifest",
		"path", manifestPathForLog(command.ManifestPath),
		"variables", len(manifest.Vars()),
		"files", len(manifest.Files()),
	)

	// An empty manifest needs no backend, so a wrapper left in place
	// after the last secret is removed keeps working without one.
	var source secretsource.Source
	if !manifest.Empty() {
		source, err = r.openSource(ctx)
		if err != nil {
			return fmt.Errorf("opening secret source: %w", err)
		}
		logger.Debug("opened secret source", "type", r.Config.Source.Type)
	}

	client := provider.New(manifest, provider.Options{
		AllowEnvOverride: command.AllowEnvOverride,
		Source:           source,
	})
	materializer := &materialize.Materializer{
		Environment: environment,
		Permissions: adapter,
		Logger:      logger.With("component", "materialize"),
	}
	err = materializer.Materialize(ctx, manifest, client, client.AllowEnvOverride())

	// Release cached secret buffers before exec: a failed exec returns
	// here and the process lives on to report the error.
	if closeErr := client.Close(); closeErr != nil {
		logger.Warn("closing secret source", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("materializing secrets: %w", err)
	}

	// A signal that arrived during materialization must not be
	// followed by the exec it was meant to stop.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted before executing %s: %w", command.Program, err)
	}

	logger.Info("executing program", "program", command.Program, "args", len(command.Args))
	if err := adapter.ReplaceProcess(command.Program, command.Args); err != nil {
		return fmt.Errorf("executing %s: %w", command.Program, err)
	}
	return nil
}

func (r *Replacer) adapter(environment materialize.Environment) *sysexec.Adapter {
	adapter := sysexec.Adapter{}
	if r.Adapter != nil {
		adapter = *r.Adapter
	}
	if adapter.Environ == nil {
		adapter.Environ = environment.Environ
	}
	return &adapter
}

func (r *Replacer) openSource(ctx context.Context) (secretsource.Source, error) {
	if r.Config == nil {
		return nil, fmt.Errorf("no configuration")
	}
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	open := r.OpenSource
	if open == nil {
		open = secretsource.Open
	}
	return open(ctx, r.Config.Source)
}

func loadManifest(path string) (*secretfile.Secretfile, error) {
	if path == "" {
		return secretfile.Default()
	}
	return secretfile.FromPath(path)
}

func manifestPathForLog(path string) string {
	if path == "" {
		return secretfile.DefaultPath
	}
	return path
}
