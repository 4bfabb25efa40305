// Package objectstore opens CSV sources stored in S3-compatible buckets.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"restaurant-chatbot/internal/source"
)

const scheme = "s3://"

// s3API is the minimal S3 interface required by Source.
// *s3.Client from aws-sdk-go-v2 satisfies this interface.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source is a single object addressed as s3://bucket/key.
type Source struct {
	api    s3API
	bucket string
	key    string
}

// IsURI reports whether location uses the s3:// scheme.
func IsURI(location string) bool {
	return strings.HasPrefix(strings.TrimSpace(location), scheme)
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(uri string) (bucket, key string, err error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("objectstore: %q is not an s3:// URI", uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("objectstore: %q must be s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// New creates a Source for uri.
func New(api s3API, uri string) (*Source, error) {
	if api == nil {
		return nil, errors.New("objectstore: api must not be nil")
	}
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return &Source{api: api, bucket: bucket, key: key}, nil
}

// Open fetches the object. Any failure wraps source.ErrUnavailable.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrUnavailable, s.Name(), err)
	}
	if out == nil || out.Body == nil {
		return nil, fmt.Errorf("%w: %s: empty body", source.ErrUnavailable, s.Name())
	}
	return out.Body, nil
}

func (s *Source) Name() string {
	return scheme + s.bucket + "/" + s.key
}
