// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/credenv/lib/codec"
)

func TestSealOpen(t *testing.T) {
	host := generate(t)
	operator := generate(t)

	values := map[string]string{
		"db/password": "hunter2",
		"api/token":   "tok_123",
		"empty":       "",
	}
	bundle, err := Seal(values, []string{host.PublicKey, operator.PublicKey})
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if bundle.Version != BundleVersion {
		t.Errorf("Version = %d, want %d", bundle.Version, BundleVersion)
	}
	if diff := cmp.Diff([]string{host.PublicKey, operator.PublicKey}, bundle.Recipients); diff != "" {
		t.Errorf("Recipients mismatch (-want +got):\n%s", diff)
	}

	data, err := bundle.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bundle.cbor")
	if err := os.WriteFile(path, data, 0400); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}

	read, err := ReadBundle(path)
	if err != nil {
		t.Fatalf("ReadBundle() error: %v", err)
	}
	opened, err := read.Open(operator.PrivateKey)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer closeAll(opened)

	got := make(map[string]string, len(opened))
	for key, buffer := range opened {
		got[key] = buffer.String()
	}
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("opened values mismatch (-want +got):\n%s", diff)
	}
}

func TestSeal_EmptyKey(t *testing.T) {
	keypair := generate(t)
	if _, err := Seal(map[string]string{"": "x"}, []string{keypair.PublicKey}); err == nil {
		t.Fatal("Seal() accepted an empty key")
	}
}

func TestOpen_WrongKey(t *testing.T) {
	keypair := generate(t)
	wrong := generate(t)

	bundle, err := Seal(map[string]string{"k": "v"}, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if _, err := bundle.Open(wrong.PrivateKey); err == nil {
		t.Fatal("Open() with the wrong identity succeeded")
	}
}

func TestParseBundle_Errors(t *testing.T) {
	encode := func(v any) []byte {
		data, err := codec.Marshal(v)
		if err != nil {
			t.Fatalf("codec.Marshal() error: %v", err)
		}
		return data
	}

	tests := []struct {
		name      string
		data      []byte
		wantError string
	}{
		{name: "garbage", data: []byte("not cbor"), wantError: "decoding bundle envelope"},
		{name: "future version", data: encode(Bundle{Version: 99, Ciphertext: []byte{1}}), wantError: "unsupported bundle version 99"},
		{name: "no ciphertext", data: encode(Bundle{Version: BundleVersion}), wantError: "no ciphertext"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseBundle(test.data)
			if err == nil {
				t.Fatal("ParseBundle() succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.wantError) {
				t.Errorf("ParseBundle() error = %v, want substring %q", err, test.wantError)
			}
		})
	}
}
