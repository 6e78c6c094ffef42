// Package cloud provides thin adapters over AWS service clients for the
// application layers. Each adapter takes the aws.Config produced by the
// session factory and exposes a narrow client interface so tests can
// substitute fakes; a config carrying a base endpoint (LocalStack, MinIO)
// is honored without further wiring.
package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the object store uses.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object describes one stored object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is an S3-compatible object storage adapter. Works with AWS
// S3, LocalStack, and MinIO.
type ObjectStore struct {
	client S3API
	region string
}

// ObjectStoreOption configures the object store.
type ObjectStoreOption func(*ObjectStore)

// WithS3Client sets a custom S3 client (for testing).
func WithS3Client(client S3API) ObjectStoreOption {
	return func(s *ObjectStore) {
		s.client = client
	}
}

// NewObjectStore builds the adapter from a session factory config.
func NewObjectStore(cfg aws.Config, opts ...ObjectStoreOption) *ObjectStore {
	s := &ObjectStore{region: cfg.Region}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			// Custom endpoints need path-style bucket addressing.
			if cfg.BaseEndpoint != nil {
				o.UsePathStyle = true
			}
		})
	}
	return s
}

// Buckets lists all bucket names.
func (s *ObjectStore) Buckets(ctx context.Context) ([]string, error) {
	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, bucket := range out.Buckets {
		names = append(names, aws.ToString(bucket.Name))
	}
	return names, nil
}

// CreateBucket creates the bucket, tolerating one we already own.
func (s *ObjectStore) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit LocationConstraint.
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}
	return nil
}

// DeleteBucket deletes the bucket; it must be empty.
func (s *ObjectStore) DeleteBucket(ctx context.Context, bucket string) error {
	if _, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("deleting bucket %s: %w", bucket, err)
	}
	return nil
}

// List returns the objects under prefix.
func (s *ObjectStore) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("listing objects in %s: %w", bucket, err)
	}

	objects := make([]Object, 0, len(out.Contents))
	for _, item := range out.Contents {
		obj := Object{
			Key:  aws.ToString(item.Key),
			Size: aws.ToInt64(item.Size),
		}
		if item.LastModified != nil {
			obj.LastModified = *item.LastModified
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// Put stores body under key. An empty contentType is omitted.
func (s *ObjectStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get returns the object's content.
func (s *ObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Delete removes the object.
func (s *ObjectStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
