package cache

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// expiresMeta is the object metadata key holding an entry's expiry as
// Unix seconds. S3 has no per-object TTL, so Get enforces it.
const expiresMeta = "jirascope-expires-at"

// s3API is the subset of *s3.Client the cache uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options locate the bucket of an [S3Cache].
type S3Options struct {
	Bucket string
	// Prefix is prepended to every object key, e.g. "jirascope/".
	Prefix string
	Region string
	// Endpoint selects an S3-compatible server (MinIO and similar) and
	// enables path-style addressing.
	Endpoint string
}

// S3Cache shares rendered images through an S3 bucket, so CI jobs and
// developers reuse each other's renders.
type S3Cache struct {
	client s3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Cache builds a client from the default AWS credential chain.
func NewS3Cache(ctx context.Context, opts S3Options) (Cache, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 cache: bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3Cache(s3.NewFromConfig(cfg, s3opts...), opts.Bucket, opts.Prefix), nil
}

func newS3Cache(client s3API, bucket, prefix string) *S3Cache {
	return &S3Cache{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (c *S3Cache) objectKey(key string) *string {
	return aws.String(c.prefix + key)
}

// Get downloads the object for key. Missing and expired objects are misses.
func (c *S3Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    c.objectKey(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if stderrors.As(err, &missing) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get: %w", err)
	}
	defer out.Body.Close()

	if v, ok := out.Metadata[expiresMeta]; ok {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil && c.now().After(time.Unix(sec, 0)) {
			return nil, false, nil
		}
	}
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 read: %w", err)
	}
	return data, true, nil
}

// Set uploads data. A positive ttl is recorded in the object metadata.
func (c *S3Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    c.objectKey(key),
		Body:   bytes.NewReader(data),
	}
	if ttl > 0 {
		in.Metadata = map[string]string{
			expiresMeta: strconv.FormatInt(c.now().Add(ttl).Unix(), 10),
		}
	}
	if _, err := c.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

// Delete removes the object for key.
func (c *S3Cache) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    c.objectKey(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (c *S3Cache) Close() error {
	return nil
}

var _ Cache = (*S3Cache)(nil)
