// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads credenv's YAML configuration: where secret
// values come from and how credenv logs.
//
// The file is named by the CREDENV_CONFIG environment variable. There
// is no search path and no ~/.config discovery; when the variable is
// unset [Load] returns [Default], which reads secrets from the systemd
// credentials directory. This keeps a plain `credenv prog` under a
// unit with LoadCredential= working with zero configuration.
//
// A file may carry development, staging and production sections whose
// non-empty fields override the base values when [Config].Environment
// matches. ${VAR} and ${VAR:-default} are expanded in path fields
// after overrides are applied.
package config
