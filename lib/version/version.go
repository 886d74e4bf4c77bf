// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags -X. Release builds set all four.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the release version.
	Version = "0.1.0-dev"
)

// stamp is the build identity Info renders.
type stamp struct {
	commit, buildTime string
	dirty             bool
}

// current prefers the linker-injected values. When they were not set
// (go install, go run), it falls back to the VCS settings the toolchain
// embeds in the binary.
func current() stamp {
	result := stamp{commit: GitCommit, buildTime: BuildTime, dirty: GitDirty == "true"}
	if result.commit != "unknown" {
		return result
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return result
	}
	return fromBuildSettings(result, info.Settings)
}

func fromBuildSettings(result stamp, settings []debug.BuildSetting) stamp {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			result.commit = setting.Value
			if len(result.commit) > 12 {
				result.commit = result.commit[:12]
			}
		case "vcs.time":
			if result.buildTime == "unknown" {
				result.buildTime = setting.Value
			}
		case "vcs.modified":
			result.dirty = setting.Value == "true"
		}
	}
	return result
}

func (s stamp) String() string {
	dirty := ""
	if s.dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, s.commit, dirty, s.buildTime)
}

// Info returns the one-line version string: version, commit, and build
// time.
func Info() string {
	return current().String()
}

// Full is Info followed by the Go toolchain and platform, for the
// version subcommands.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
