// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
)

// DefaultPath is the manifest read by Default, relative to the working
// directory.
const DefaultPath = "Secretfile"

var variableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Secretfile is a parsed manifest. Declarations keep their order.
type Secretfile struct {
	vars     []string
	files    []string
	varKeys  map[string]string
	fileKeys map[string]string
}

// SyntaxError describes a malformed manifest line.
type SyntaxError struct {
	Line int // 1-based
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Default reads ./Secretfile.
func Default() (*Secretfile, error) {
	return FromPath(DefaultPath)
}

// FromPath reads and parses the manifest at path.
func FromPath(path string) (*Secretfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	manifest, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// Parse parses a manifest, interpolating from the process environment.
func Parse(r io.Reader) (*Secretfile, error) {
	manifest := &Secretfile{
		varKeys:  make(map[string]string),
		fileKeys: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := manifest.parseLine(line); err != nil {
			return nil, &SyntaxError{Line: lineNumber, Msg: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return manifest, nil
}

func (s *Secretfile) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return errors.New("expected \"NAME key\" or \">path key\"")
	}
	target, rawKey := fields[0], fields[1]

	key, err := interpolate(rawKey)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("key is empty after interpolation")
	}

	if rawPath, isFile := strings.CutPrefix(target, ">"); isFile {
		path, err := interpolate(rawPath)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New("file path is empty")
		}
		if _, exists := s.fileKeys[path]; exists {
			return fmt.Errorf("file %s declared more than once", path)
		}
		s.files = append(s.files, path)
		s.fileKeys[path] = key
		return nil
	}

	if !variableName.MatchString(target) {
		return fmt.Errorf("invalid environment variable name %q", target)
	}
	if _, exists := s.varKeys[target]; exists {
		return fmt.Errorf("variable %s declared more than once", target)
	}
	s.vars = append(s.vars, target)
	s.varKeys[target] = key
	return nil
}

// interpolate replaces $VAR and ${VAR} from the environment. Every
// referenced variable must be set; empty values are allowed.
func interpolate(value string) (string, error) {
	var missing []string
	expanded := os.Expand(value, func(name string) string {
		replacement, ok := os.LookupEnv(name)
		if !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
		return replacement
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %s is not set (referenced in %q)", strings.Join(missing, ", "), value)
	}
	return expanded, nil
}

// Vars returns the declared environment variable names.
func (s *Secretfile) Vars() []string {
	return slices.Clone(s.vars)
}

// Files returns the declared file paths.
func (s *Secretfile) Files() []string {
	return slices.Clone(s.files)
}

// VarKey returns the backend key for a declared variable.
func (s *Secretfile) VarKey(name string) (string, bool) {
	key, ok := s.varKeys[name]
	return key, ok
}

// FileKey returns the backend key for a declared file.
func (s *Secretfile) FileKey(path string) (string, bool) {
	key, ok := s.fileKeys[path]
	return key, ok
}

// Empty reports whether the manifest declares nothing.
func (s *Secretfile) Empty() bool {
	return len(s.vars) == 0 && len(s.files) == 0
}
