package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps images in an S3 bucket. Handles are object keys.
type S3Store struct {
	client        S3API
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

// NewS3Store creates an S3-backed store. publicBaseURL (for example a
// CloudFront domain) is prepended to keys to build public paths.
func NewS3Store(client S3API, bucket, keyPrefix, publicBaseURL string) *S3Store {
	if client == nil {
		panic("media: s3 client cannot be nil")
	}
	if bucket == "" {
		panic("media: bucket cannot be empty")
	}
	return &S3Store{
		client:        client,
		bucket:        bucket,
		keyPrefix:     strings.Trim(keyPrefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Save uploads data under keyPrefix/name.
func (s *S3Store) Save(ctx context.Context, name, contentType string, data []byte) (Object, error) {
	key := strings.TrimLeft(name, "/")
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("media: s3 put %s: %w", key, err)
	}
	return Object{
		Name:       path.Base(key),
		PublicPath: s.publicBaseURL + "/" + key,
		Handle:     key,
		Size:       int64(len(data)),
	}, nil
}

// Open downloads the object stored under handle.
func (s *S3Store) Open(ctx context.Context, handle string) ([]byte, error) {
	key := strings.TrimLeft(strings.TrimPrefix(handle, s.publicBaseURL), "/")
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrNotFound)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("media: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("media: s3 read %s: %w", key, err)
	}
	return data, nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchKey")
}
