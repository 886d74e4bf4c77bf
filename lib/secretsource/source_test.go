// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"context"
	"testing"

	"github.com/bureau-foundation/credenv/lib/config"
)

func TestOpen(t *testing.T) {
	root := t.TempDir()
	envFile := writeFile(t, root, "secrets.env", "k=from-file\n")
	credentials := t.TempDir()
	writeFile(t, credentials, "k", "from-directory\n")
	bundlePath, identityPath := writeBundle(t, map[string]string{"k": "from-bundle"})

	tests := []struct {
		name string
		cfg  config.SourceConfig
		want string
	}{
		{
			name: "file",
			cfg:  config.SourceConfig{Type: config.SourceFile, File: config.FileSourceConfig{Path: envFile}},
			want: "from-file",
		},
		{
			name: "directory",
			cfg:  config.SourceConfig{Type: config.SourceDirectory, Directory: config.DirectorySourceConfig{Path: credentials}},
			want: "from-directory",
		},
		{
			name: "sealed",
			cfg: config.SourceConfig{Type: config.SourceSealed, Sealed: config.SealedSourceConfig{
				Bundle: bundlePath, Identity: identityPath,
			}},
			want: "from-bundle",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			source, err := Open(context.Background(), test.cfg)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer source.Close()
			if got := getString(t, source, "k"); got != test.want {
				t.Errorf("Get(k) = %q, want %q", got, test.want)
			}
		})
	}
}

func TestOpen_S3(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	source, err := Open(context.Background(), config.SourceConfig{
		Type: config.SourceS3,
		S3: config.S3SourceConfig{
			Bucket: "secrets", Prefix: "app/", Region: "us-east-1",
			Endpoint: "http://127.0.0.1:9000", Timeout: "3s",
		},
	})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	s3Source, ok := source.(*S3)
	if !ok {
		t.Fatalf("Open() returned %T, want *S3", source)
	}
	if s3Source.Bucket != "secrets" || s3Source.Prefix != "app/" || s3Source.Timeout.Seconds() != 3 {
		t.Errorf("S3 source = %+v", s3Source)
	}
}

func TestOpen_UnknownType(t *testing.T) {
	if _, err := Open(context.Background(), config.SourceConfig{Type: "vault"}); err == nil {
		t.Fatal("Open(vault) succeeded, want error")
	}
}
