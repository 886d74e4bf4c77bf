// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secretfile parses Secretfile manifests: the list of
// environment variables and files a program needs, and the backend
// key each one is resolved from.
//
// The format is line oriented:
//
//	# Comments and blank lines are ignored.
//	DATABASE_URL  app/${DEPLOY_ENV}/database-url
//	>/run/app/tls/key.pem  app/tls-key
//
// A line starting with ">" declares a file at the given path; any other
// line declares an environment variable. $VAR and ${VAR} in paths and
// keys are replaced from the environment when the manifest is parsed,
// and referencing an unset variable is an error rather than an empty
// string, because a silently truncated key would fetch the wrong
// secret.
package secretfile
