// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Credenv loads the secrets a program declares in its Secretfile into
// the environment and onto disk, then execs the program in its own
// place. It is meant to be the entrypoint of a container or a systemd
// unit:
//
//	credenv [--no-env-override] [-f <secretfile>] <app> [<args>...]
//
// Secret values come from the backend named in the CREDENV_CONFIG
// file, or from $CREDENTIALS_DIRECTORY when no configuration is given.
// On success nothing of credenv remains: the process ID, stdio and
// signal dispositions all belong to <app>.
package main
