// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysexec wraps the two operating system primitives credenv
// needs once secrets are in place: changing a file's permission bits
// and replacing the running process image with another program.
//
// Every string headed for the kernel (paths, argv entries, environment
// entries) is checked for an embedded NUL byte before any system call
// is attempted. A NUL anywhere makes the whole request a
// [BadArgumentError]; nothing is partially applied. Failures reported
// by the kernel come back as [SystemError] values carrying the errno.
//
// The raw operations sit behind the [Syscalls] interface. [Unix] is the
// production implementation, built on golang.org/x/sys/unix for every
// Unix GOOS. Tests substitute a recording fake so that the exec path
// can be exercised without replacing the test binary.
//
// [Adapter.ReplaceProcess] has execvp semantics: a program name without
// a slash is resolved through PATH. On success it never returns.
package sysexec
