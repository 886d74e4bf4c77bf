// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds credenv's CBOR encoding configuration.
//
// CBOR is used for sealed bundle envelopes written by credenv-seal and
// read by the sealed secret source. JSON stays at the human edges
// (credential input files, the plaintext inside a sealed bundle).
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same bundle therefore always serializes to the same bytes, which
// keeps bundles diffable and cacheable by content.
//
//	data, err := codec.Marshal(bundle)
//	err = codec.Unmarshal(data, &bundle)
//
// Types that are only ever CBOR carry `cbor` struct tags.
package codec
