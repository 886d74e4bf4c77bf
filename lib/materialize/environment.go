// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"maps"
	"os"
	"slices"
	"strings"
	"syscall"
)

// Environment is the variable table materialized variables go into
// and the program inherits.
type Environment interface {
	LookupEnv(name string) (string, bool)
	Setenv(name, value string) error

	// Environ returns the table as "NAME=value" entries.
	Environ() []string
}

// ProcessEnvironment is the environment of the current process.
type ProcessEnvironment struct{}

func (ProcessEnvironment) LookupEnv(name string) (string, bool) { return os.LookupEnv(name) }
func (ProcessEnvironment) Setenv(name, value string) error      { return os.Setenv(name, value) }
func (ProcessEnvironment) Environ() []string                    { return os.Environ() }

// MapEnvironment is an in-memory Environment.
type MapEnvironment map[string]string

func (m MapEnvironment) LookupEnv(name string) (string, bool) {
	value, ok := m[name]
	return value, ok
}

// Setenv rejects what os.Setenv rejects: an empty name, or a name or
// value the kernel's environment block cannot carry.
func (m MapEnvironment) Setenv(name, value string) error {
	if name == "" || strings.ContainsAny(name, "=\x00") || strings.ContainsRune(value, 0) {
		return os.NewSyscallError("setenv", syscall.EINVAL)
	}
	m[name] = value
	return nil
}

// Environ returns the entries sorted by name.
func (m MapEnvironment) Environ() []string {
	entries := make([]string, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		entries = append(entries, name+"="+m[name])
	}
	return entries
}
