// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog logger credenv uses for its own
// diagnostics.
//
// credenv shares stderr with the program it wraps, so the default
// level is warn: a healthy run prints nothing. The handler is text on
// a terminal and JSON otherwise, matching what log collectors expect
// from a service's stderr.
//
// Secret values are never logged. Variable names, file paths and
// backend keys are.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the handler.
type Format string

const (
	// FormatAuto is text when the writer is a terminal, JSON otherwise.
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures New. The zero value is warn level, auto format.
type Options struct {
	// Level is the minimum level emitted.
	Level slog.Level

	// Format picks the handler. Empty means FormatAuto.
	Format Format
}

// New returns a logger writing to w.
func New(w io.Writer, options Options) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: options.Level}

	var handler slog.Handler
	if useText(w, options.Format) {
		handler = slog.NewTextHandler(w, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(w, handlerOptions)
	}
	return slog.New(handler)
}

// ParseOptions converts the string settings from configuration.
// Empty values select the defaults.
func ParseOptions(level, format string) (Options, error) {
	options := Options{Level: slog.LevelWarn, Format: FormatAuto}

	if level != "" {
		if err := options.Level.UnmarshalText([]byte(level)); err != nil {
			return Options{}, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	switch Format(strings.ToLower(format)) {
	case "", FormatAuto:
	case FormatText:
		options.Format = FormatText
	case FormatJSON:
		options.Format = FormatJSON
	default:
		return Options{}, fmt.Errorf("unknown log format %q", format)
	}
	return options, nil
}

func useText(w io.Writer, format Format) bool {
	switch format {
	case FormatText:
		return true
	case FormatJSON:
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
