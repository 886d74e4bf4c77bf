// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/credenv/lib/secret"
)

// Directory serves one file per key from a directory, the layout
// systemd exposes in $CREDENTIALS_DIRECTORY for LoadCredential= and
// SetCredentialEncrypted=. See https://systemd.io/CREDENTIALS/.
//
// Keys must be local relative paths: "db-password" and "tls/key.pem"
// are fine, "../etc/shadow" and "/etc/shadow" are rejected. Trailing
// line endings are stripped since credential files are usually
// written by editors or echo.
type Directory struct {
	root string
}

// NewDirectory serves values from path, which must be a directory.
func NewDirectory(path string) (*Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("credentials directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("credentials directory %s is not a directory", path)
	}
	return &Directory{root: path}, nil
}

func (s *Directory) Get(_ context.Context, key string) (*secret.Buffer, error) {
	if !filepath.IsLocal(key) {
		return nil, fmt.Errorf("key %q escapes the credentials directory", key)
	}

	data, err := os.ReadFile(filepath.Join(s.root, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	trimmed := bytes.TrimRight(data, "\r\n")
	buffer, err := secret.NewFromBytes(trimmed)
	secret.Zero(data)
	return buffer, err
}

// Close is a no-op; nothing is cached.
func (s *Directory) Close() error { return nil }
