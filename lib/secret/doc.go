// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds secret material (fetched variable values, file
// contents, age identities) outside the Go heap while credenv works
// with it.
//
// A [Buffer] is an anonymous mmap region that the garbage collector
// never sees, so it is never copied or relocated. The region is locked
// into RAM with mlock and, on Linux, excluded from core dumps with
// MADV_DONTDUMP. Both protections are best effort: credenv commonly
// runs in containers with a tiny RLIMIT_MEMLOCK, and failing to start
// the wrapped program because memory could not be pinned would be
// worse than running unpinned. [Buffer.Locked] reports which case
// applies. Close zeroes, unlocks and unmaps the region.
//
// Secrets may legitimately be empty (an empty environment variable);
// a zero-length Buffer has no mapping at all.
//
// [Zero] clears ordinary byte slices that briefly held secret
// material, and [ReadFromPath] loads a trimmed secret (such as an age
// identity) straight into a Buffer.
package secret
