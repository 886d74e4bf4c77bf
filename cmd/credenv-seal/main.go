// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/credenv/lib/codec"
	"github.com/bureau-foundation/credenv/lib/process"
	"github.com/bureau-foundation/credenv/lib/sealed"
	"github.com/bureau-foundation/credenv/lib/secret"
	"github.com/bureau-foundation/credenv/lib/version"
)

const programName = "credenv-seal"

// streams bundles the streams a subcommand may use.
type streams struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

func main() {
	if err := run(os.Args[1:], streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, s streams) error {
	if len(args) == 0 {
		printUsage(s.stderr)
		return errors.New("subcommand required")
	}

	subcommand, rest := args[0], args[1:]
	switch subcommand {
	case "keygen":
		return runKeygen(rest, s)
	case "seal":
		return runSeal(rest, s)
	case "list":
		return runList(rest, s)
	case "inspect":
		return runInspect(rest, s)
	case "version", "--version":
		fmt.Fprintf(s.stdout, "%s %s\n", programName, version.Full())
		return nil
	case "-h", "--help", "help":
		printUsage(s.stdout)
		return nil
	default:
		printUsage(s.stderr)
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s <subcommand> [flags]

Subcommands:
  keygen      Generate an age keypair for a host or an operator
  seal        Encrypt a JSON object of credentials into a bundle
  list        List the keys in a bundle (never the values)
  inspect     Print a bundle's envelope without decrypting it
  version     Print version information

Run '%s <subcommand> --help' for subcommand flags.
`, programName, programName)
}

// newFlagSet returns a flag set that reports problems as errors
// instead of exiting.
func newFlagSet(name string, s streams) *flag.FlagSet {
	flags := flag.NewFlagSet(programName+" "+name, flag.ContinueOnError)
	flags.SetOutput(s.stderr)
	flags.SortFlags = false
	return flags
}

// parseFlags parses args and reports whether the subcommand should
// continue. --help is not an error.
func parseFlags(flags *flag.FlagSet, args []string) (bool, error) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	if flags.NArg() > 0 {
		return false, fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}
	return true, nil
}

// runKeygen prints a new public key on stdout. The private key goes to
// stderr, or to --output written 0400.
func runKeygen(args []string, s streams) error {
	flags := newFlagSet("keygen", s)
	output := flags.StringP("output", "o", "", "write the private key to `file` (mode 0400) instead of stderr")
	if proceed, err := parseFlags(flags, args); !proceed {
		return err
	}

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}
	defer keypair.Close()

	if *output != "" {
		// Two writes: appending the newline would copy the key out of
		// locked memory.
		if err := writeExclusive(*output, keypair.PrivateKey.Bytes(), []byte("\n")); err != nil {
			return fmt.Errorf("writing private key: %w", err)
		}
	} else {
		fmt.Fprintf(s.stderr, "# Private key (keep this secret, store it on the host only):\n")
		fmt.Fprintf(s.stderr, "%s\n", keypair.PrivateKey.String())
	}
	fmt.Fprintf(s.stdout, "%s\n", keypair.PublicKey)
	return nil
}

// runSeal reads a JSON object of string values (comments and trailing
// commas allowed) and writes a sealed bundle.
func runSeal(args []string, s streams) error {
	flags := newFlagSet("seal", s)
	recipients := flags.StringArrayP("recipient", "r", nil, "age public `key` to encrypt to (repeatable, required)")
	fromFile := flags.StringP("from-file", "i", "", "read credentials from `file` instead of stdin")
	output := flags.StringP("output", "o", "", "write the bundle to `file` (mode 0400, required)")
	if proceed, err := parseFlags(flags, args); !proceed {
		return err
	}
	if len(*recipients) == 0 || *output == "" {
		flags.Usage()
		return errors.New("--recipient and --output are required")
	}
	for _, recipient := range *recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return fmt.Errorf("recipient %q: %w", recipient, err)
		}
	}

	reader := s.stdin
	if *fromFile != "" {
		file, err := os.Open(*fromFile)
		if err != nil {
			return fmt.Errorf("opening credential file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	values, err := readCredentials(reader)
	if err != nil {
		return err
	}

	bundle, err := sealed.Seal(values, *recipients)
	if err != nil {
		return fmt.Errorf("sealing credentials: %w", err)
	}
	data, err := bundle.Marshal()
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := writeExclusive(*output, data); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}

	fmt.Fprintf(s.stderr, "Sealed %d credentials to %s\n", len(values), *output)
	fmt.Fprintf(s.stderr, "  Keys: %s\n", strings.Join(sortedKeys(values), ", "))
	fmt.Fprintf(s.stderr, "  Recipients: %s\n", strings.Join(*recipients, ", "))
	return nil
}

func readCredentials(reader io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	defer secret.Zero(data)

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("no credential data provided (pipe JSON to stdin or use --from-file)")
	}

	stripped := jsonc.ToJSON(data)
	defer secret.Zero(stripped)

	var values map[string]string
	if err := json.Unmarshal(stripped, &values); err != nil {
		return nil, fmt.Errorf("parsing credential JSON (expected an object of string values): %w", err)
	}
	if len(values) == 0 {
		return nil, errors.New("credential JSON is empty")
	}
	return values, nil
}

// runList decrypts a bundle and prints its keys, one per line, sorted.
func runList(args []string, s streams) error {
	flags := newFlagSet("list", s)
	bundlePath := flags.StringP("bundle", "b", "", "bundle `file` to read (required)")
	identityPath := flags.StringP("identity", "k", "", "private key `file` to decrypt with, or - for stdin (required)")
	if proceed, err := parseFlags(flags, args); !proceed {
		return err
	}
	if *bundlePath == "" || *identityPath == "" {
		flags.Usage()
		return errors.New("--bundle and --identity are required")
	}

	bundle, err := sealed.ReadBundle(*bundlePath)
	if err != nil {
		return err
	}

	var identity *secret.Buffer
	if *identityPath == "-" {
		identity, err = readIdentity(s.stdin)
	} else {
		identity, err = secret.ReadFromPath(*identityPath)
	}
	if err != nil {
		return fmt.Errorf("reading identity: %w", err)
	}
	defer identity.Close()

	values, err := bundle.Open(identity)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	keys := make([]string, 0, len(values))
	for key, buffer := range values {
		keys = append(keys, key)
		buffer.Close()
	}
	slices.Sort(keys)

	for _, key := range keys {
		fmt.Fprintln(s.stdout, key)
	}
	return nil
}

func readIdentity(reader io.Reader) (*secret.Buffer, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(data)
	trimmed := []byte(strings.TrimSpace(string(data)))
	if len(trimmed) == 0 {
		return nil, errors.New("identity on stdin is empty")
	}
	return secret.NewFromBytes(trimmed)
}

// runInspect prints the envelope in CBOR diagnostic notation. The
// ciphertext is opaque, so nothing secret is shown.
func runInspect(args []string, s streams) error {
	flags := newFlagSet("inspect", s)
	bundlePath := flags.StringP("bundle", "b", "", "bundle `file` to read (required)")
	if proceed, err := parseFlags(flags, args); !proceed {
		return err
	}
	if *bundlePath == "" {
		flags.Usage()
		return errors.New("--bundle is required")
	}

	bundle, err := sealed.ReadBundle(*bundlePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(*bundlePath)
	if err != nil {
		return err
	}
	diagnostic, err := codec.Diagnose(data)
	if err != nil {
		return fmt.Errorf("rendering bundle: %w", err)
	}

	fmt.Fprintf(s.stdout, "version:    %d\n", bundle.Version)
	fmt.Fprintf(s.stdout, "recipients: %s\n", strings.Join(bundle.Recipients, ", "))
	fmt.Fprintf(s.stdout, "ciphertext: %d bytes\n", len(bundle.Ciphertext))
	fmt.Fprintf(s.stdout, "envelope:   %s\n", diagnostic)
	return nil
}

// writeExclusive creates path with mode 0400 and writes chunks in
// order. It never replaces an existing file, and removes the one it
// created if a write fails.
func writeExclusive(path string, chunks ...[]byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0400)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if _, err := file.Write(chunk); err != nil {
			file.Close()
			os.Remove(path)
			return err
		}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
