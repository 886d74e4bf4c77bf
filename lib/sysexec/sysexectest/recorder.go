// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysexectest provides a recording [sysexec.Syscalls]
// implementation for tests that must observe permission changes and
// exec calls without replacing the test process.
package sysexectest

import (
	"errors"

	"github.com/bureau-foundation/credenv/lib/sysexec"
)

// ErrReplaced is returned by [Recorder.Exec]. A real exec never comes
// back on success, so tests treat receiving this error as "the process
// would have been replaced here".
var ErrReplaced = errors.New("sysexectest: process replaced")

// ChmodCall is one recorded Chmod invocation.
type ChmodCall struct {
	Path string
	Mode uint32
}

// ExecCall is one recorded Exec invocation.
type ExecCall struct {
	Path string
	Argv []string
	Env  []string
}

// Recorder records every raw operation. Chmod is forwarded to Delegate
// when set so that file modes on disk change as they would in
// production; Exec is never forwarded.
type Recorder struct {
	Delegate sysexec.Syscalls

	// ChmodErr, when set, is returned by Chmod instead of delegating.
	ChmodErr error

	// LookPathErr, when set, is returned by LookPath.
	LookPathErr error

	// OnChmod, when set, runs before Chmod delegates.
	OnChmod func(path string, mode uint32)

	// Calls in the order they were made.
	Chmods    []ChmodCall
	Execs     []ExecCall
	LookPaths []string
}

var _ sysexec.Syscalls = (*Recorder)(nil)

// Calls returns the total number of raw operations performed.
func (r *Recorder) Calls() int {
	return len(r.Chmods) + len(r.Execs) + len(r.LookPaths)
}

// Chmod records the call and forwards it to Delegate.
func (r *Recorder) Chmod(path string, mode uint32) error {
	r.Chmods = append(r.Chmods, ChmodCall{Path: path, Mode: mode})
	if r.OnChmod != nil {
		r.OnChmod(path, mode)
	}
	if r.ChmodErr != nil {
		return r.ChmodErr
	}
	if r.Delegate != nil {
		return r.Delegate.Chmod(path, mode)
	}
	return nil
}

// Exec records the call and returns [ErrReplaced].
func (r *Recorder) Exec(path string, argv []string, envv []string) error {
	r.Execs = append(r.Execs, ExecCall{
		Path: path,
		Argv: append([]string(nil), argv...),
		Env:  append([]string(nil), envv...),
	})
	return ErrReplaced
}

// LookPath records the call and resolves file to itself.
func (r *Recorder) LookPath(file string) (string, error) {
	r.LookPaths = append(r.LookPaths, file)
	if r.LookPathErr != nil {
		return "", r.LookPathErr
	}
	return file, nil
}
