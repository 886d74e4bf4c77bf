// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for credenv binaries:
// reporting a fatal error before or without the structured logger,
// and choosing the exit status for a failed run.
//
// credenv normally leaves through exec and never exits on its own.
// When it does exit, the status is what a supervisor sees in place of
// the wrapped program's, so it carries the errno of the OS failure
// (ENOENT for a missing program, EACCES for a permission problem)
// rather than a blanket 1.
package process
