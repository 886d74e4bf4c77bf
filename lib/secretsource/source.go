// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secretsource provides the backends secret values are read
// from: a KEY=value file, a systemd-style credentials directory, an
// age-sealed bundle, and an S3 bucket.
//
// Every backend maps an opaque key (the second column of a Secretfile
// line) to bytes. Values are handed out in [secret.Buffer]s which the
// caller must Close.
package secretsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/credenv/lib/config"
	"github.com/bureau-foundation/credenv/lib/secret"
)

// ErrNotFound is returned by Get when the backend has no value for a
// key. Other errors mean the backend could not answer.
var ErrNotFound = errors.New("secret not found")

// Source reads secret values by key.
type Source interface {
	// Get returns the value stored under key. The caller owns the
	// returned buffer.
	Get(ctx context.Context, key string) (*secret.Buffer, error)

	// Close releases any cached values.
	Close() error
}

// Open constructs the backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case config.SourceFile:
		return NewFile(cfg.File.Path)
	case config.SourceDirectory:
		return NewDirectory(cfg.Directory.Path)
	case config.SourceSealed:
		return NewSealed(cfg.Sealed.Bundle, cfg.Sealed.Identity)
	case config.SourceS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown secret source type %q", cfg.Type)
	}
}

// cloneBuffer returns an independent copy of buffer for a caller that
// will Close it.
func cloneBuffer(buffer *secret.Buffer) (*secret.Buffer, error) {
	return secret.NewFromBytes(append([]byte(nil), buffer.Bytes()...))
}

// cachedValues is the shared storage of backends that load every
// value up front.
type cachedValues map[string]*secret.Buffer

func (c cachedValues) get(key string) (*secret.Buffer, error) {
	buffer, ok := c[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBuffer(buffer)
}

func (c cachedValues) close() error {
	for key, buffer := range c {
		buffer.Close()
		delete(c, key)
	}
	return nil
}
