// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type envelope struct {
	Version    int      `cbor:"version"`
	Recipients []string `cbor:"recipients"`
	Payload    []byte   `cbor:"payload"`
}

func TestMarshalUnmarshal(t *testing.T) {
	original := envelope{
		Version:    1,
		Recipients: []string{"age1a", "age1b"},
		Payload:    []byte{0x00, 0xff, 0x10},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if decoded.Version != original.Version ||
		strings.Join(decoded.Recipients, ",") != "age1a,age1b" ||
		!bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("decoded %+v, want %+v", decoded, original)
	}
}

func TestMarshal_DeterministicMapOrder(t *testing.T) {
	// Go randomizes map iteration; deterministic encoding must not.
	values := map[string]string{"zeta": "1", "alpha": "2", "mid": "3", "beta": "4"}

	first, err := Marshal(values)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for range 20 {
		again, err := Marshal(values)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("Marshal() not deterministic: %x != %x", first, again)
		}
	}
}

func TestUnmarshal_IgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{"version": 2, "future": "field"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if decoded.Version != 2 {
		t.Errorf("Version = %d, want 2", decoded.Version)
	}
}

func TestUnmarshal_RejectsDuplicateKeys(t *testing.T) {
	// {"version": 1, "version": 2}
	data := []byte{0xa2, 0x67, 'v', 'e', 'r', 's', 'i', 'o', 'n', 0x01, 0x67, 'v', 'e', 'r', 's', 'i', 'o', 'n', 0x02}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err == nil {
		t.Fatalf("Unmarshal() accepted duplicate map keys, decoded %+v", decoded)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]int{"version": 1})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose() error: %v", err)
	}
	if diagnostic != `{"version": 1}` {
		t.Errorf("Diagnose() = %q, want %q", diagnostic, `{"version": 1}`)
	}
}
