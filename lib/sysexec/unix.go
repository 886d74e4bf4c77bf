// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package sysexec

import (
	"errors"
	"io/fs"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Unix performs the raw operations with golang.org/x/sys/unix.
type Unix struct{}

// Chmod calls chmod(2).
func (Unix) Chmod(path string, mode uint32) error {
	return unix.Chmod(path, mode)
}

// Exec calls execve(2). It returns only on failure.
func (Unix) Exec(path string, argv []string, envv []string) error {
	return unix.Exec(path, argv, envv)
}

// LookPath resolves file through PATH. Names containing a slash are
// checked in place. Failures are reduced to the errno execvp would
// have reported. Results relative to the working directory (an empty
// or "." PATH entry) are accepted, as execvp accepts them.
func (Unix) LookPath(file string) (string, error) {
	path, err := exec.LookPath(file)
	if err == nil || errors.Is(err, exec.ErrDot) {
		return path, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return "", unix.ENOENT
	}
	var pathError *fs.PathError
	if errors.As(err, &pathError) {
		return "", pathError.Err
	}
	if errors.Is(err, fs.ErrPermission) {
		return "", unix.EACCES
	}
	return "", err
}
