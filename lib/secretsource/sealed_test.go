// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/credenv/lib/sealed"
)

// writeBundle seals values to a fresh keypair and returns the bundle
// and identity paths.
func writeBundle(t *testing.T, values map[string]string) (bundlePath, identityPath string) {
	t.Helper()
	directory := t.TempDir()

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer keypair.Close()

	bundle, err := sealed.Seal(values, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	data, err := bundle.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	bundlePath = filepath.Join(directory, "bundle.cbor")
	identityPath = filepath.Join(directory, "key.txt")
	if err := os.WriteFile(bundlePath, data, 0400); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}
	if err := os.WriteFile(identityPath, []byte(keypair.PrivateKey.String()+"\n"), 0400); err != nil {
		t.Fatalf("writing identity: %v", err)
	}
	return bundlePath, identityPath
}

func TestSealed(t *testing.T) {
	bundlePath, identityPath := writeBundle(t, map[string]string{
		"app/database-url": "postgres://app@db/app",
		"app/tls-key":      "-----BEGIN KEY-----\nabc\n-----END KEY-----\n",
	})

	source, err := NewSealed(bundlePath, identityPath)
	if err != nil {
		t.Fatalf("NewSealed() error: %v", err)
	}
	defer source.Close()

	if got := getString(t, source, "app/database-url"); got != "postgres://app@db/app" {
		t.Errorf("Get(app/database-url) = %q", got)
	}
	// Sealed values are stored verbatim, including trailing newlines.
	if got := getString(t, source, "app/tls-key"); got != "-----BEGIN KEY-----\nabc\n-----END KEY-----\n" {
		t.Errorf("Get(app/tls-key) = %q", got)
	}
	if _, err := source.Get(context.Background(), "app/missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestNewSealed_WrongIdentity(t *testing.T) {
	bundlePath, _ := writeBundle(t, map[string]string{"k": "v"})
	_, otherIdentity := writeBundle(t, map[string]string{"k": "v"})

	if _, err := NewSealed(bundlePath, otherIdentity); err == nil {
		t.Fatal("NewSealed() with a foreign identity succeeded")
	}
}

func TestNewSealed_MissingFiles(t *testing.T) {
	bundlePath, identityPath := writeBundle(t, map[string]string{"k": "v"})
	missing := filepath.Join(t.TempDir(), "missing")

	if _, err := NewSealed(missing, identityPath); err == nil {
		t.Error("NewSealed(missing bundle) succeeded")
	}
	if _, err := NewSealed(bundlePath, missing); err == nil {
		t.Error("NewSealed(missing identity) succeeded")
	}
}
