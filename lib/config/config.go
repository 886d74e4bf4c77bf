// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file.
const EnvironmentVariable = "CREDENV_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is a developer workstation. Typically paired with
	// a file source and debug logging.
	Development Environment = "development"

	// Staging is a pre-production deployment.
	Staging Environment = "staging"

	// Production is the default when no environment is configured.
	Production Environment = "production"
)

// SourceType selects the secret backend.
type SourceType string

const (
	// SourceFile reads KEY=value lines from one file.
	SourceFile SourceType = "file"
	// SourceDirectory reads one file per key, the systemd credentials
	// layout.
	SourceDirectory SourceType = "directory"
	// SourceSealed decrypts an age-sealed bundle.
	SourceSealed SourceType = "sealed"
	// SourceS3 reads one object per key from an S3 bucket.
	SourceS3 SourceType = "s3"
)

// Config is the complete credenv configuration.
type Config struct {
	// Environment selects which override section below applies.
	Environment Environment `yaml:"environment"`

	// Log configures credenv's own diagnostics.
	Log LogConfig `yaml:"log"`

	// Source selects where secret values are read from.
	Source SourceConfig `yaml:"source"`

	// Environment-specific overrides, merged over the base sections
	// when Environment matches.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
// Within a non-nil section, each non-empty field replaces the base
// value.
type ConfigOverrides struct {
	Log    *LogConfig    `yaml:"log,omitempty"`
	Source *SourceConfig `yaml:"source,omitempty"`
}

// LogConfig controls credenv's own diagnostics on stderr.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is auto, text or json. Auto picks text on a terminal.
	Format string `yaml:"format"`
}

// SourceConfig selects and configures the secret backend. Only the
// section matching Type is used.
type SourceConfig struct {
	Type      SourceType            `yaml:"type"`
	File      FileSourceConfig      `yaml:"file"`
	Directory DirectorySourceConfig `yaml:"directory"`
	Sealed    SealedSourceConfig    `yaml:"sealed"`
	S3        S3SourceConfig        `yaml:"s3"`
}

// FileSourceConfig configures the file source.
type FileSourceConfig struct {
	// Path is a file of KEY=value lines. Blank lines and # comments
	// are ignored.
	Path string `yaml:"path"`
}

// DirectorySourceConfig configures the directory source.
type DirectorySourceConfig struct {
	// Path is a directory holding one file per key, such as the
	// $CREDENTIALS_DIRECTORY systemd provides to a unit.
	Path string `yaml:"path"`
}

// SealedSourceConfig configures the sealed bundle source.
type SealedSourceConfig struct {
	// Bundle is the CBOR bundle written by credenv-seal.
	Bundle string `yaml:"bundle"`

	// Identity is a file holding the AGE-SECRET-KEY-1... private key.
	Identity string `yaml:"identity"`
}

// S3SourceConfig configures the S3 source. Credentials come from the
// standard AWS chain (environment, shared config, instance role).
type S3SourceConfig struct {
	// Bucket holds one object per secret key. Required.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended verbatim to every key.
	Prefix string `yaml:"prefix"`

	// Region overrides the region from the AWS shared config chain.
	Region string `yaml:"region"`

	// Endpoint points at an S3-compatible server such as MinIO.
	// Setting it switches the client to path-style addressing.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds each object fetch, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration returns the parsed Timeout. Validate has already
// rejected unparseable values for loaded configs.
func (s S3SourceConfig) TimeoutDuration() time.Duration {
	duration, err := time.ParseDuration(s.Timeout)
	if err != nil || duration <= 0 {
		return 30 * time.Second
	}
	return duration
}

// Default returns the configuration used when CREDENV_CONFIG is unset,
// and the base that a loaded file is merged into.
func Default() *Config {
	return &Config{
		Environment: Production,
		Log: LogConfig{
			Level:  "warn",
			Format: "auto",
		},
		Source: SourceConfig{
			Type:      SourceDirectory,
			Directory: DirectorySourceConfig{Path: "${CREDENTIALS_DIRECTORY}"},
			S3:        S3SourceConfig{Timeout: "30s"},
		},
	}
}

// Load loads the file named by CREDENV_CONFIG, or returns the expanded
// Default when it is unset. The result is not validated.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Log != nil {
		setIfNonEmpty(&c.Log.Level, overrides.Log.Level)
		setIfNonEmpty(&c.Log.Format, overrides.Log.Format)
	}

	if source := overrides.Source; source != nil {
		if source.Type != "" {
			c.Source.Type = source.Type
		}
		setIfNonEmpty(&c.Source.File.Path, source.File.Path)
		setIfNonEmpty(&c.Source.Directory.Path, source.Directory.Path)
		setIfNonEmpty(&c.Source.Sealed.Bundle, source.Sealed.Bundle)
		setIfNonEmpty(&c.Source.Sealed.Identity, source.Sealed.Identity)
		setIfNonEmpty(&c.Source.S3.Bucket, source.S3.Bucket)
		setIfNonEmpty(&c.Source.S3.Prefix, source.S3.Prefix)
		setIfNonEmpty(&c.Source.S3.Region, source.S3.Region)
		setIfNonEmpty(&c.Source.S3.Endpoint, source.S3.Endpoint)
		setIfNonEmpty(&c.Source.S3.Timeout, source.S3.Timeout)
	}
}

func setIfNonEmpty(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Source.File.Path = expandVars(c.Source.File.Path, vars)
	c.Source.Directory.Path = expandVars(c.Source.Directory.Path, vars)
	c.Source.Sealed.Bundle = expandVars(c.Source.Sealed.Bundle, vars)
	c.Source.Sealed.Identity = expandVars(c.Source.Sealed.Identity, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	switch c.Source.Type {
	case SourceFile:
		if c.Source.File.Path == "" {
			errs = append(errs, errors.New("source.file.path is required"))
		}
	case SourceDirectory:
		if c.Source.Directory.Path == "" {
			errs = append(errs, errors.New("source.directory.path is required (is CREDENTIALS_DIRECTORY set?)"))
		}
	case SourceSealed:
		if c.Source.Sealed.Bundle == "" {
			errs = append(errs, errors.New("source.sealed.bundle is required"))
		}
		if c.Source.Sealed.Identity == "" {
			errs = append(errs, errors.New("source.sealed.identity is required"))
		}
	case SourceS3:
		if c.Source.S3.Bucket == "" {
			errs = append(errs, errors.New("source.s3.bucket is required"))
		}
		if duration, err := time.ParseDuration(c.Source.S3.Timeout); err != nil || duration <= 0 {
			errs = append(errs, fmt.Errorf("source.s3.timeout must be a positive duration, got %q", c.Source.S3.Timeout))
		}
	default:
		errs = append(errs, fmt.Errorf("source.type must be one of: %v", []SourceType{SourceFile, SourceDirectory, SourceSealed, SourceS3}))
	}

	return errors.Join(errs...)
}
