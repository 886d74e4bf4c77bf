// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/bureau-foundation/credenv/lib/sysexec"
	"github.com/bureau-foundation/credenv/lib/sysexec/sysexectest"
	"github.com/bureau-foundation/credenv/lib/version"
)

func TestRun_HelpAndVersion(t *testing.T) {
	tests := []struct {
		args       []string
		wantPrefix string
	}{
		{args: []string{"--help"}, wantPrefix: "Usage:\n  credenv --version\n"},
		{args: []string{"--version"}, wantPrefix: "credenv " + version.Info() + "\n"},
	}

	for _, test := range tests {
		var stdout, stderr bytes.Buffer
		status := run(test.args, &stdout, &stderr, nil)
		if status != 0 {
			t.Errorf("run(%q) = %d, want 0", test.args, status)
		}
		if !strings.HasPrefix(stdout.String(), test.wantPrefix) {
			t.Errorf("run(%q) stdout = %q, want prefix %q", test.args, stdout.String(), test.wantPrefix)
		}
		if stderr.Len() != 0 {
			t.Errorf("run(%q) stderr = %q, want empty", test.args, stderr.String())
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"--bogus", "app"},
		{"-f"},
		{"--", "-app"},
	} {
		var stdout, stderr bytes.Buffer
		if status := run(args, &stdout, &stderr, nil); status != 1 {
			t.Errorf("run(%q) = %d, want 1", args, status)
		}
		if !strings.HasPrefix(stderr.String(), "error: ") || !strings.Contains(stderr.String(), "Usage:") {
			t.Errorf("run(%q) stderr = %q, want error line and usage", args, stderr.String())
		}
		if stdout.Len() != 0 {
			t.Errorf("run(%q) stdout = %q, want empty", args, stdout.String())
		}
	}
}

func writeFixture(t *testing.T, directory, name, content string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRun_ExecsWithMaterializedEnvironment(t *testing.T) {
	directory := t.TempDir()
	credentials := writeFixture(t, directory, "secrets.env", "app/token=tok_123\n")
	configPath := writeFixture(t, directory, "credenv.yaml", "source:\n  type: file\n  file:\n    path: "+credentials+"\n")
	manifest := writeFixture(t, directory, "Secretfile", "CREDENV_TEST_TOKEN app/token\n")
	t.Setenv("CREDENV_CONFIG", configPath)
	t.Setenv("CREDENV_TEST_TOKEN", "")

	recorder := &sysexectest.Recorder{}
	var stdout, stderr bytes.Buffer
	status := run([]string{"-f", manifest, "myapp", "arg"}, &stdout, &stderr, &sysexec.Adapter{Syscalls: recorder})

	// The recorder's exec comes back with a sentinel; a real exec never
	// returns, so a non-zero status is what this path looks like here.
	if status != 1 {
		t.Errorf("run() = %d, want 1 from the sentinel", status)
	}
	if len(recorder.Execs) != 1 {
		t.Fatalf("exec calls = %d, want 1 (stderr: %s)", len(recorder.Execs), stderr.String())
	}
	found := false
	for _, entry := range recorder.Execs[0].Env {
		if entry == "CREDENV_TEST_TOKEN=tok_123" {
			found = true
		}
	}
	if !found {
		t.Errorf("exec environment lacks CREDENV_TEST_TOKEN=tok_123")
	}
}

func TestRun_FailureExitStatusCarriesErrno(t *testing.T) {
	directory := t.TempDir()
	credentials := writeFixture(t, directory, "secrets.env", "")
	configPath := writeFixture(t, directory, "credenv.yaml", "source:\n  type: file\n  file:\n    path: "+credentials+"\n")
	t.Setenv("CREDENV_CONFIG", configPath)

	var stdout, stderr bytes.Buffer
	status := run([]string{"-f", filepath.Join(directory, "missing"), "myapp"}, &stdout, &stderr, &sysexec.Adapter{Syscalls: &sysexectest.Recorder{}})
	if status != int(syscall.ENOENT) {
		t.Errorf("run() = %d, want ENOENT (%d)", status, int(syscall.ENOENT))
	}
	if !strings.HasPrefix(stderr.String(), "error: loading manifest: ") {
		t.Errorf("stderr = %q, want loading manifest error", stderr.String())
	}
}

func TestRun_InvalidLogConfiguration(t *testing.T) {
	configPath := writeFixture(t, t.TempDir(), "credenv.yaml", "log:\n  level: loud\n")
	t.Setenv("CREDENV_CONFIG", configPath)

	var stdout, stderr bytes.Buffer
	if status := run([]string{"myapp"}, &stdout, &stderr, nil); status != 1 {
		t.Errorf("run() = %d, want 1", status)
	}
	if !strings.Contains(stderr.String(), "log level") {
		t.Errorf("stderr = %q, want log level error", stderr.String())
	}
}
