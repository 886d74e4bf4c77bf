// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/credenv/lib/secret"
)

// File serves values from a KEY=value file. Keys are matched exactly.
//
//	# Comments and blank lines are ignored.
//	app/database-url=postgres://app@db/app
//	app/api-token = tok_123
//
// Whitespace around keys and values is trimmed. The file is read once
// by NewFile. Keeping credentials in a file rather than the parent's
// environment keeps them out of /proc/*/environ of every ancestor.
type File struct {
	values cachedValues
}

// NewFile reads and parses the file at path.
func NewFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	defer secret.Zero(data)

	values := make(cachedValues)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		rawKey, value, found := bytes.Cut(line, []byte("="))
		key := string(bytes.TrimSpace(rawKey))
		if !found || key == "" {
			values.close()
			return nil, fmt.Errorf("%s: line %d: expected key=value", path, lineNumber)
		}
		if _, exists := values[key]; exists {
			values.close()
			return nil, fmt.Errorf("%s: line %d: duplicate key %q", path, lineNumber, key)
		}
		buffer, err := secret.NewFromBytes(append([]byte(nil), bytes.TrimSpace(value)...))
		if err != nil {
			values.close()
			return nil, fmt.Errorf("protecting value for %q: %w", key, err)
		}
		values[key] = buffer
	}
	if err := scanner.Err(); err != nil {
		values.close()
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	return &File{values: values}, nil
}

func (s *File) Get(_ context.Context, key string) (*secret.Buffer, error) {
	return s.values.get(key)
}

func (s *File) Close() error {
	return s.values.close()
}
