// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for credenv
// binaries.
//
// Four variables are injected at build time via -ldflags -X:
// [GitCommit], [GitDirty], [BuildTime] and [Version]. Without them,
// the commit and time come from the VCS stamp the Go toolchain embeds,
// and a plain "go test" reports "unknown".
//
//	go build -ldflags "-X github.com/bureau-foundation/credenv/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version
