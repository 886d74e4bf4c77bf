// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package materialize writes resolved secrets into the running
// process: declared variables into its environment, declared files
// onto disk.
//
// Files are never overwritten. If anything already exists at a
// declared path (a file, a directory, a dangling symlink) the
// declaration is skipped without fetching, which makes repeated runs
// in the same container idempotent. New files are created exclusively
// with mode 0400, and the mode is set again explicitly before the
// first byte is written so that a permissive umask or inherited ACL
// cannot leave secret content readable by others even briefly.
//
// Materialization stops at the first failure and leaves whatever was
// already done in place.
package materialize
