// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/credenv/lib/sealed"
	"github.com/bureau-foundation/credenv/lib/secret"
)

// Sealed serves values from a bundle written by credenv-seal. The
// bundle is decrypted once, in NewSealed, and the identity is released
// as soon as that is done.
type Sealed struct {
	values cachedValues
}

// NewSealed decrypts the bundle at bundlePath with the age identity
// stored in identityPath.
func NewSealed(bundlePath, identityPath string) (*Sealed, error) {
	bundle, err := sealed.ReadBundle(bundlePath)
	if err != nil {
		return nil, err
	}

	identity, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	defer identity.Close()

	values, err := bundle.Open(identity)
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", bundlePath, err)
	}
	return &Sealed{values: values}, nil
}

func (s *Sealed) Get(_ context.Context, key string) (*secret.Buffer, error) {
	return s.values.get(key)
}

func (s *Sealed) Close() error {
	return s.values.close()
}
