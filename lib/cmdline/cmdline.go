// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cmdline parses the credenv command line.
//
// The grammar is a wrapper grammar: credenv options come first, then
// the program to launch, then that program's arguments, which are
// never interpreted. Scanning is strictly left to right and stops at
// the first token that is not a credenv option, or at "--". Parse never
// exits the process; it returns a [Result] whose [Action] tells main
// what to do.
//
// The option vocabulary is registered in a pflag.FlagSet, which renders
// the options section of the usage text. The scan itself is
// hand-written: pflag would accept spellings the grammar does not
// ("-fpath", "--no-env-override=false") and cannot give --help priority
// over a malformed token that follows it.
package cmdline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// ProgramName is the name used in usage and version output.
const ProgramName = "credenv"

// Action tells the caller how to proceed after parsing.
type Action int

const (
	// ActionRun means Result.Command is valid and should be run.
	ActionRun Action = iota
	// ActionHelp means usage should be printed and the process should
	// exit successfully.
	ActionHelp
	// ActionVersion means the version should be printed and the
	// process should exit successfully.
	ActionVersion
	// ActionUsageError means the command line was malformed. Result.Err
	// describes why; usage should be printed and the process should
	// exit with status 1.
	ActionUsageError
)

func (a Action) String() string {
	switch a {
	case ActionRun:
		return "run"
	case ActionHelp:
		return "help"
	case ActionVersion:
		return "version"
	case ActionUsageError:
		return "usage-error"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Command is a parsed invocation.
type Command struct {
	// ManifestPath is the Secretfile named with -f. Empty means the
	// default Secretfile in the working directory.
	ManifestPath string

	// AllowEnvOverride is false when --no-env-override was given:
	// variables already present in the environment keep their values.
	AllowEnvOverride bool

	// Program is the program to launch. Never empty and never starts
	// with "-".
	Program string

	// Args are forwarded to Program verbatim.
	Args []string
}

// Result is the outcome of [Parse].
type Result struct {
	Action Action

	// Command is set only when Action is ActionRun.
	Command Command

	// Err is set only when Action is ActionUsageError.
	Err error
}

// Usage errors. Result.Err wraps one of these.
var (
	// ErrUnknownOption is a "-" token before the program that is not
	// a credenv option, including attached forms such as -fPATH.
	ErrUnknownOption = errors.New("unknown option")

	// ErrMissingValue is -f as the last token.
	ErrMissingValue = errors.New("option requires a value")

	// ErrMissingProgram means the options consumed every token.
	ErrMissingProgram = errors.New("no program specified")

	// ErrInvalidProgram is an empty program name, or one after "--"
	// that starts with "-".
	ErrInvalidProgram = errors.New("program name must not be empty or start with '-'")

	// ErrEmptyManifestPath is -f with an empty value.
	ErrEmptyManifestPath = errors.New("secretfile path must not be empty")
)

const (
	flagHelp          = "help"
	flagVersion       = "version"
	flagSecretfile    = "secretfile"
	flagNoEnvOverride = "no-env-override"
)

func newFlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet(ProgramName, flag.ContinueOnError)
	flags.SortFlags = false
	flags.Bool(flagHelp, false, "Show this help and exit")
	flags.Bool(flagVersion, false, "Print the version and exit")
	flags.StringP(flagSecretfile, "f", "", "Use `secretfile` instead of ./Secretfile")
	flags.Bool(flagNoEnvOverride, false, "Keep variables already set in the environment instead\nof replacing them with values from the Secretfile")
	return flags
}

// Parse interprets tokens (the command line without argv[0]).
func Parse(tokens []string) Result {
	var (
		manifestPath    string
		manifestPathSet bool
		noEnvOverride   bool
	)

	index := 0
scan:
	for index < len(tokens) {
		token := tokens[index]
		switch {
		case token == "--"+flagHelp:
			return Result{Action: ActionHelp}
		case token == "--"+flagVersion:
			return Result{Action: ActionVersion}
		case token == "-f":
			if index+1 >= len(tokens) {
				return usageError(fmt.Errorf("%w: %s", ErrMissingValue, token))
			}
			manifestPath, manifestPathSet = tokens[index+1], true
			index += 2
		case token == "--"+flagNoEnvOverride:
			noEnvOverride = true
			index++
		case token == "--":
			index++
			break scan
		case strings.HasPrefix(token, "-"):
			return usageError(fmt.Errorf("%w: %s", ErrUnknownOption, token))
		default:
			break scan
		}
	}

	if index >= len(tokens) {
		return usageError(ErrMissingProgram)
	}
	program := tokens[index]
	if program == "" || strings.HasPrefix(program, "-") {
		return usageError(fmt.Errorf("%w: %q", ErrInvalidProgram, program))
	}

	if manifestPathSet && manifestPath == "" {
		return usageError(ErrEmptyManifestPath)
	}

	args := make([]string, 0, len(tokens)-index-1)
	args = append(args, tokens[index+1:]...)

	return Result{
		Action: ActionRun,
		Command: Command{
			ManifestPath:     manifestPath,
			AllowEnvOverride: !noEnvOverride,
			Program:          program,
			Args:             args,
		},
	}
}

func usageError(err error) Result {
	return Result{Action: ActionUsageError, Err: err}
}

// WriteUsage writes the usage text to w.
func WriteUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %[1]s --version
  %[1]s --help
  %[1]s [--no-env-override] [-f <secretfile>] <app> [<args>...]

Processes a Secretfile, loading secrets into the environment or writing
them to files as requested. Once this is done, it execs <app> with <args>.

Options:
`, ProgramName)

	newFlagSet().VisitAll(func(option *flag.Flag) {
		valueName, usage := flag.UnquoteUsage(option)
		spelling := "--" + option.Name
		if option.Shorthand != "" {
			spelling = "-" + option.Shorthand
		}
		if option.Value.Type() != "bool" {
			spelling += " <" + valueName + ">"
		}
		lines := strings.Split(usage, "\n")
		fmt.Fprintf(w, "  %-20s %s\n", spelling, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "  %-20s %s\n", "", line)
		}
	})

	fmt.Fprintf(w, `
Environment:
  CREDENV_CONFIG       Path to the credenv YAML configuration file
`)
}
