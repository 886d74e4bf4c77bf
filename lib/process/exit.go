// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// Fatal writes "error: err" to stderr and exits with ExitCode(err).
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// Report writes "error: err" to w.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// ExitCode returns the exit status for a failed run: the first errno
// found in err's chain, clamped to 1..125 (126 and up are reserved by
// shells for "cannot execute", "not found" and signals), otherwise 1.
// A nil error is status 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) || errno == 0 {
		return 1
	}
	return min(max(int(errno), 1), 125)
}
