// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	awshttp "github.com/aws/smithy-go/transport/http"

	"github.com/bureau-foundation/credenv/lib/config"
	"github.com/bureau-foundation/credenv/lib/secret"
)

// maxObjectSize caps a single secret. Anything bigger is almost
// certainly a misconfigured prefix pointing at real data.
const maxObjectSize = 1 << 20

// S3API is the part of *s3.Client that S3 uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 serves each key from the object Prefix+key in Bucket.
// Credentials come from the standard AWS chain (environment, shared
// config, web identity, instance role).
type S3 struct {
	// Client is usually an *s3.Client from NewS3.
	Client S3API
	Bucket string
	Prefix string

	// Timeout bounds each GetObject call. Zero means no limit beyond
	// the caller's context.
	Timeout time.Duration
}

// NewS3 builds a client from the default AWS configuration chain.
func NewS3(ctx context.Context, cfg config.S3SourceConfig) (*S3, error) {
	var options []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		options = append(options, awsconfig.WithRegion(cfg.Region))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsConfig.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		// S3-compatible servers are commonly deployed without
		// virtual-host bucket subdomains.
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return &S3{
		Client:  client,
		Bucket:  cfg.Bucket,
		Prefix:  cfg.Prefix,
		Timeout: cfg.TimeoutDuration(),
	}, nil
}

func (s *S3) Get(ctx context.Context, key string) (*secret.Buffer, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	output, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Prefix + key),
	})
	if err != nil {
		return nil, s.translate(key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(io.LimitReader(output.Body, maxObjectSize+1))
	if err != nil {
		secret.Zero(data)
		return nil, fmt.Errorf("reading s3://%s/%s%s: %w", s.Bucket, s.Prefix, key, err)
	}
	if len(data) > maxObjectSize {
		secret.Zero(data)
		return nil, fmt.Errorf("s3://%s/%s%s is larger than %d bytes", s.Bucket, s.Prefix, key, maxObjectSize)
	}
	return secret.NewFromBytes(data)
}

func (s *S3) translate(key string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}

	var responseError *awshttp.ResponseError
	if errors.As(err, &responseError) {
		switch responseError.HTTPStatusCode() {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusForbidden:
			return fmt.Errorf("access denied to s3://%s/%s%s (check the AWS credential chain and bucket policy): %w", s.Bucket, s.Prefix, key, err)
		}
	}
	return fmt.Errorf("fetching s3://%s/%s%s: %w", s.Bucket, s.Prefix, key, err)
}

// Close is a no-op; the SDK client holds no secrets.
func (s *S3) Close() error { return nil }
