// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts credential values to age x25519 recipients
// and decrypts them with a private identity.
//
// A sealed [Bundle] is the on-disk artifact produced by credenv-seal
// and consumed by the sealed secret source: a CBOR envelope carrying a
// format version, the recipient public keys (for operators; never
// needed to decrypt), and the age ciphertext of a JSON object mapping
// backend keys to string values.
//
// Private keys and decrypted plaintext are returned as [secret.Buffer]
// values so they live outside the Go heap and are zeroed on Close.
package sealed
