// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/credenv/lib/codec"
	"github.com/bureau-foundation/credenv/lib/secret"
)

// BundleVersion is the envelope format written by Seal.
const BundleVersion = 1

// Bundle is a sealed set of credential values.
type Bundle struct {
	// Version is BundleVersion. Other values are rejected on parse.
	Version int `cbor:"version"`

	// Recipients lists the age public keys the bundle was sealed to.
	// Informational only: decryption does not consult it.
	Recipients []string `cbor:"recipients"`

	// Ciphertext is the binary age encryption of a JSON object
	// mapping keys to values.
	Ciphertext []byte `cbor:"ciphertext"`
}

// Seal encrypts values to recipientKeys and returns the bundle.
func Seal(values map[string]string, recipientKeys []string) (*Bundle, error) {
	for key := range values {
		if key == "" {
			return nil, errors.New("credential key must not be empty")
		}
	}

	plaintext, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding credential values: %w", err)
	}
	defer secret.Zero(plaintext)

	ciphertext, err := Encrypt(plaintext, recipientKeys)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Version:    BundleVersion,
		Recipients: append([]string(nil), recipientKeys...),
		Ciphertext: ciphertext,
	}, nil
}

// Open decrypts the bundle and returns its values, each in its own
// buffer. The caller must Close every returned buffer.
func (b *Bundle) Open(privateKey *secret.Buffer) (map[string]*secret.Buffer, error) {
	plaintext, err := Decrypt(b.Ciphertext, privateKey)
	if err != nil {
		return nil, err
	}
	defer plaintext.Close()

	// Decoding into strings leaves heap copies of every value until the
	// collector reclaims them; encoding/json has no zero-copy mode.
	var decoded map[string]string
	if err := json.Unmarshal(plaintext.Bytes(), &decoded); err != nil {
		return nil, fmt.Errorf("decoding bundle plaintext: %w", err)
	}

	values := make(map[string]*secret.Buffer, len(decoded))
	for key, value := range decoded {
		buffer, err := secret.NewFromBytes([]byte(value))
		if err != nil {
			closeAll(values)
			return nil, fmt.Errorf("protecting value for %q: %w", key, err)
		}
		values[key] = buffer
	}
	return values, nil
}

// Marshal encodes the bundle envelope as CBOR.
func (b *Bundle) Marshal() ([]byte, error) {
	return codec.Marshal(b)
}

// ParseBundle decodes and validates a CBOR bundle envelope.
func ParseBundle(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := codec.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decoding bundle envelope: %w", err)
	}
	if bundle.Version != BundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d (this build reads version %d)", bundle.Version, BundleVersion)
	}
	if len(bundle.Ciphertext) == 0 {
		return nil, errors.New("bundle has no ciphertext")
	}
	return &bundle, nil
}

// ReadBundle reads and validates the bundle at path.
func ReadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	bundle, err := ParseBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bundle, nil
}

func closeAll(values map[string]*secret.Buffer) {
	for _, buffer := range values {
		buffer.Close()
	}
}
