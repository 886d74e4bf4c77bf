// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a secret from path, or from stdin when path is
// "-", trims surrounding whitespace and returns it in a Buffer. An
// empty secret is an error: this is used for keys and identities, for
// which empty is never valid.
func ReadFromPath(path string) (*Buffer, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret in %s is empty", describeSource(path))
	}
	return NewFromBytes(trimmed)
}

func describeSource(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}
