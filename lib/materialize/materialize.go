// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/credenv/lib/secret"
	"github.com/bureau-foundation/credenv/lib/sysexec"
)

// FileMode is the permission of every materialized file.
const FileMode = 0400

// DirectoryMode is the permission of parent directories created for
// materialized files.
const DirectoryMode = 0755

// Step names the operation a StepError failed in.
type Step string

const (
	// StepInterrupted means the context was cancelled before the
	// named declaration was started.
	StepInterrupted Step = "interrupted"

	// StepResolveVariable and StepSetVariable cover a variable
	// declaration: reading it from the provider, then writing it into
	// the Environment.
	StepResolveVariable Step = "resolve-variable"
	StepSetVariable     Step = "set-variable"

	// The file steps, in the order they run for one declaration.
	StepStatFile        Step = "stat-file"
	StepCreateDirectory Step = "create-directory"
	StepFetchFile       Step = "fetch-file"
	StepCreateFile      Step = "create-file"
	StepSetPermissions  Step = "set-permissions"
	StepWriteFile       Step = "write-file"
	StepCloseFile       Step = "close-file"
)

// StepError reports which declaration failed and at which step. Name
// is the variable name or file path.
type StepError struct {
	Step Step
	Name string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Manifest lists what to materialize, in order.
type Manifest interface {
	Vars() []string
	Files() []string
}

// Provider resolves declarations to values.
type Provider interface {
	Var(ctx context.Context, name string) (string, error)
	File(ctx context.Context, path string) ([]byte, error)
}

// PermissionSetter changes file permission bits.
type PermissionSetter interface {
	SetPermissions(path string, mode uint32) error
}

// Materializer applies a manifest. The zero value works on the current
// process with the default system call adapter.
type Materializer struct {
	// Environment receives variables. Nil means ProcessEnvironment.
	Environment Environment

	// Permissions sets FileMode on each created file before any
	// content is written. Nil means a default sysexec.Adapter.
	Permissions PermissionSetter

	// Logger receives names and paths, never values. Nil discards.
	Logger *slog.Logger
}

func (m *Materializer) environment() Environment {
	if m.Environment == nil {
		return ProcessEnvironment{}
	}
	return m.Environment
}

func (m *Materializer) permissions() PermissionSetter {
	if m.Permissions == nil {
		return &sysexec.Adapter{}
	}
	return m.Permissions
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

// Materialize sets every declared variable, then creates every declared
// file, in manifest order. With allowEnvOverride false, a variable that
// is already set keeps its value; it is still resolved, so a broken
// declaration fails the same way regardless of the environment.
//
// ctx is checked before each declaration. Once it is cancelled,
// Materialize stops with a StepInterrupted error and leaves earlier
// work in place.
func (m *Materializer) Materialize(ctx context.Context, manifest Manifest, provider Provider, allowEnvOverride bool) error {
	environment := m.environment()
	logger := m.logger()

	for _, name := range manifest.Vars() {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: StepInterrupted, Name: name, Err: err}
		}
		value, err := provider.Var(ctx, name)
		if err != nil {
			return &StepError{Step: StepResolveVariable, Name: name, Err: err}
		}
		if _, exists := environment.LookupEnv(name); exists && !allowEnvOverride {
			logger.Debug("keeping existing environment variable", "variable", name)
			continue
		}
		if err := environment.Setenv(name, value); err != nil {
			return &StepError{Step: StepSetVariable, Name: name, Err: err}
		}
		logger.Debug("set environment variable", "variable", name)
	}

	for _, path := range manifest.Files() {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: StepInterrupted, Name: path, Err: err}
		}
		if err := m.materializeFile(ctx, path, provider, logger); err != nil {
			return err
		}
	}
	return nil
}

func (m *Materializer) materializeFile(ctx context.Context, path string, provider Provider, logger *slog.Logger) error {
	if _, err := os.Lstat(path); err == nil {
		logger.Debug("file already exists, skipping", "path", path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &StepError{Step: StepStatFile, Name: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), DirectoryMode); err != nil {
		return &StepError{Step: StepCreateDirectory, Name: path, Err: err}
	}

	// Fetch before creating anything, so a backend failure leaves no
	// file behind for the next run to mistake for a finished one.
	data, err := provider.File(ctx, path)
	if err != nil {
		return &StepError{Step: StepFetchFile, Name: path, Err: err}
	}
	defer secret.Zero(data)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FileMode)
	if err != nil {
		return &StepError{Step: StepCreateFile, Name: path, Err: err}
	}

	// The file is still empty here. Content is written only once the
	// mode is known to be FileMode regardless of the umask.
	if err := m.permissions().SetPermissions(path, FileMode); err != nil {
		discard(file, path)
		return &StepError{Step: StepSetPermissions, Name: path, Err: err}
	}
	if _, err := file.Write(data); err != nil {
		discard(file, path)
		return &StepError{Step: StepWriteFile, Name: path, Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return &StepError{Step: StepCloseFile, Name: path, Err: err}
	}
	logger.Debug("wrote file", "path", path)
	return nil
}

// discard closes and removes a file this run created but could not
// finish.
func discard(file *os.File, path string) {
	file.Close()
	os.Remove(path)
}
