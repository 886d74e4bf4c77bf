// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secretsource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	awshttp "github.com/aws/smithy-go/transport/http"
)

type fakeS3 struct {
	objects  map[string]string
	err      error
	requests []string
	deadline bool
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.requests = append(f.requests, *input.Bucket+"/"+*input.Key)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*input.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func responseError(status int) error {
	return &awshttp.ResponseError{
		Response: &awshttp.Response{Response: &http.Response{StatusCode: status}},
		Err:      errors.New("api error"),
	}
}

func TestS3_Get(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"prod/app/token": "tok_123"}}
	source := &S3{Client: client, Bucket: "secrets", Prefix: "prod/", Timeout: 5 * time.Second}

	if got := getString(t, source, "app/token"); got != "tok_123" {
		t.Errorf("Get() = %q, want tok_123", got)
	}
	if len(client.requests) != 1 || client.requests[0] != "secrets/prod/app/token" {
		t.Errorf("requests = %v, want [secrets/prod/app/token]", client.requests)
	}
	if !client.deadline {
		t.Error("GetObject context has no deadline despite Timeout")
	}
}

func TestS3_Errors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
		wantError    string
	}{
		{name: "no such key", err: &types.NoSuchKey{}, wantNotFound: true},
		{name: "http 404", err: responseError(http.StatusNotFound), wantNotFound: true},
		{name: "http 403", err: responseError(http.StatusForbidden), wantError: "access denied"},
		{name: "other", err: errors.New("connection reset"), wantError: "fetching s3://secrets/app/key"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			source := &S3{Client: &fakeS3{err: test.err}, Bucket: "secrets"}
			_, err := source.Get(context.Background(), "app/key")
			if errors.Is(err, ErrNotFound) != test.wantNotFound {
				t.Fatalf("Get() error = %v, want errors.Is(ErrNotFound) = %v", err, test.wantNotFound)
			}
			if test.wantError != "" && (err == nil || !strings.Contains(err.Error(), test.wantError)) {
				t.Errorf("Get() error = %v, want substring %q", err, test.wantError)
			}
		})
	}
}

func TestS3_Missing(t *testing.T) {
	source := &S3{Client: &fakeS3{objects: map[string]string{}}, Bucket: "secrets"}
	if _, err := source.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(absent) error = %v, want ErrNotFound", err)
	}
}

func TestS3_ObjectTooLarge(t *testing.T) {
	large := strings.Repeat("x", maxObjectSize+1)
	source := &S3{Client: &fakeS3{objects: map[string]string{"big": large}}, Bucket: "secrets"}

	_, err := source.Get(context.Background(), "big")
	if err == nil || !strings.Contains(err.Error(), "larger than") {
		t.Errorf("Get(big) error = %v, want size rejection", err)
	}
}
