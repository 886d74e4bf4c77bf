// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysexec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Syscalls performs the raw operations behind an [Adapter]. Callers
// of these methods have already rejected strings containing NUL bytes.
type Syscalls interface {
	// Chmod sets the permission bits of path.
	Chmod(path string, mode uint32) error

	// Exec replaces the current process image. It returns only on
	// failure.
	Exec(path string, argv []string, envv []string) error

	// LookPath resolves a program name the way execvp does.
	LookPath(file string) (string, error)
}

// BadArgumentError reports a string that cannot be handed to the
// kernel because it contains a NUL byte. No system call was made.
type BadArgumentError struct {
	// Op is the operation that was refused ("chmod" or "exec").
	Op string

	// Field names the offending input: "path", "argv[N]", or "env[N]".
	Field string

	// Offset is the byte offset of the first NUL within the value.
	Offset int
}

func (e *BadArgumentError) Error() string {
	return fmt.Sprintf("bad argument to %s: %s contains a NUL byte at offset %d", e.Op, e.Field, e.Offset)
}

// SystemError reports a failed system call. Err is usually a
// unix.Errno; use [SystemError.Errno] to extract it.
type SystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

// Errno returns the OS error code carried by the error, or zero when
// the underlying error is not an errno.
func (e *SystemError) Errno() unix.Errno {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

// errUnexpectedReturn is recorded when an exec implementation returns
// without an error. A real execve never does that.
var errUnexpectedReturn = errors.New("exec returned without replacing the process")

// Adapter exposes the checked permission and process-replacement
// primitives. The zero value uses [Unix] and the current process
// environment.
type Adapter struct {
	// Syscalls performs the raw operations. Nil means [Unix].
	Syscalls Syscalls

	// Environ supplies the environment handed to the new program.
	// Nil means os.Environ, read at the moment of the exec so that
	// variables set earlier in this process are forwarded.
	Environ func() []string
}

func (a *Adapter) syscalls() Syscalls {
	if a.Syscalls == nil {
		return Unix{}
	}
	return a.Syscalls
}

func (a *Adapter) environ() []string {
	if a.Environ == nil {
		return os.Environ()
	}
	return a.Environ()
}

// SetPermissions sets the permission bits of path to mode.
func (a *Adapter) SetPermissions(path string, mode uint32) error {
	if err := checkString("chmod", "path", path); err != nil {
		return err
	}
	if err := a.syscalls().Chmod(path, mode); err != nil {
		return &SystemError{Op: "chmod", Path: path, Err: err}
	}
	return nil
}

// ReplaceProcess replaces the running process with program, passing
// program followed by args as argv. On success it does not return.
// The returned error is always a *BadArgumentError or *SystemError.
func (a *Adapter) ReplaceProcess(program string, args []string) error {
	argv := make([]string, 0, 1+len(args))
	argv = append(argv, program)
	argv = append(argv, args...)

	if err := checkStrings("exec", "argv", argv); err != nil {
		return err
	}
	envv := a.environ()
	if err := checkStrings("exec", "env", envv); err != nil {
		return err
	}

	path, err := a.syscalls().LookPath(program)
	if err != nil {
		return &SystemError{Op: "exec", Path: program, Err: err}
	}

	err = a.syscalls().Exec(path, argv, envv)
	if err == nil {
		err = errUnexpectedReturn
	}
	return &SystemError{Op: "exec", Path: path, Err: err}
}

func checkStrings(op, field string, values []string) error {
	for index, value := range values {
		if err := checkString(op, fmt.Sprintf("%s[%d]", field, index), value); err != nil {
			return err
		}
	}
	return nil
}

func checkString(op, field, value string) error {
	if offset := strings.IndexByte(value, 0); offset >= 0 {
		return &BadArgumentError{Op: op, Field: field, Offset: offset}
	}
	return nil
}
