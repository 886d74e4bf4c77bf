// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Credenv-seal manages the sealed bundles credenv's sealed secret
// source reads. It generates age keypairs, encrypts a JSON object of
// credentials to one or more public keys, and lists or inspects
// existing bundles without printing any value.
// Subcommands: keygen, seal, list, inspect, version.
package main
