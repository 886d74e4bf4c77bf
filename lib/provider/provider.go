// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider resolves Secretfile declarations to secret values:
// it looks up the backend key a declaration names and reads it from a
// [secretsource.Source].
package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/credenv/lib/secretfile"
	"github.com/bureau-foundation/credenv/lib/secretsource"
)

// Kind classifies a resolution failure.
type Kind string

const (
	// KindUndeclared means the name or path is not in the manifest.
	KindUndeclared Kind = "undeclared"
	// KindNotFound means the backend has no value for the key.
	KindNotFound Kind = "not-found"
	// KindBackend means the backend failed to answer.
	KindBackend Kind = "backend"
)

// Error reports a declaration that could not be resolved. Name is the
// variable name or file path; Key is the backend key when known.
type Error struct {
	Kind Kind
	Name string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUndeclared:
		return fmt.Sprintf("%s is not declared in the Secretfile", e.Name)
	case KindNotFound:
		return fmt.Sprintf("%s: no secret stored under key %q", e.Name, e.Key)
	default:
		return fmt.Sprintf("%s: reading key %q: %v", e.Name, e.Key, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

var errNoSource = errors.New("no secret source configured")

// Options configures a Client.
type Options struct {
	// AllowEnvOverride lets resolved values replace variables already
	// present in the environment.
	AllowEnvOverride bool

	// Source supplies values. It may be nil for a manifest with no
	// declarations.
	Source secretsource.Source
}

// Client resolves the declarations of one manifest.
type Client struct {
	manifest *secretfile.Secretfile
	options  Options
}

// New returns a client for manifest.
func New(manifest *secretfile.Secretfile, options Options) *Client {
	return &Client{manifest: manifest, options: options}
}

// AllowEnvOverride reports the override policy the client was built
// with.
func (c *Client) AllowEnvOverride() bool {
	return c.options.AllowEnvOverride
}

// Var resolves the declared environment variable name.
func (c *Client) Var(ctx context.Context, name string) (string, error) {
	key, ok := c.manifest.VarKey(name)
	if !ok {
		return "", &Error{Kind: KindUndeclared, Name: name}
	}
	value, err := c.fetch(ctx, name, key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// File resolves the declared file path. The caller should zero the
// returned bytes once they are written.
func (c *Client) File(ctx context.Context, path string) ([]byte, error) {
	key, ok := c.manifest.FileKey(path)
	if !ok {
		return nil, &Error{Kind: KindUndeclared, Name: path}
	}
	return c.fetch(ctx, path, key)
}

func (c *Client) fetch(ctx context.Context, name, key string) ([]byte, error) {
	if c.options.Source == nil {
		return nil, &Error{Kind: KindBackend, Name: name, Key: key, Err: errNoSource}
	}

	buffer, err := c.options.Source.Get(ctx, key)
	if err != nil {
		if errors.Is(err, secretsource.ErrNotFound) {
			return nil, &Error{Kind: KindNotFound, Name: name, Key: key, Err: err}
		}
		return nil, &Error{Kind: KindBackend, Name: name, Key: key, Err: err}
	}
	defer buffer.Close()

	return bytes.Clone(buffer.Bytes()), nil
}

// Close releases the underlying source.
func (c *Client) Close() error {
	if c.options.Source == nil {
		return nil
	}
	return c.options.Source.Close()
}
