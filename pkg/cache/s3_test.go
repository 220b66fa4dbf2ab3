package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	data []byte
	meta map[string]string
}

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	failGet error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	obj, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data)), Metadata: obj.meta}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = fakeObject{data: data, meta: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Cache(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeS3()
	c := newS3Cache(bucket, "renders", "jirascope/")

	if _, hit, err := c.Get(ctx, "artifact:1"); err != nil || hit {
		t.Fatalf("Get on empty bucket = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "artifact:1", []byte("svg"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok := bucket.objects["renders/jirascope/artifact:1"]; !ok {
		t.Errorf("object not stored under prefix, have %v", bucket.objects)
	}
	data, hit, err := c.Get(ctx, "artifact:1")
	if err != nil || !hit || string(data) != "svg" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "artifact:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:1"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestS3CacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newS3Cache(newFakeS3(), "renders", "")
	start := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return start }

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("fresh entry should hit")
	}
	c.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestS3CacheGetError(t *testing.T) {
	bucket := newFakeS3()
	bucket.failGet = errors.New("access denied")
	c := newS3Cache(bucket, "renders", "")

	if _, hit, err := c.Get(context.Background(), "k"); err == nil || hit {
		t.Errorf("Get = hit %v, err %v; want error", hit, err)
	}
}

func TestNewS3CacheRequiresBucket(t *testing.T) {
	if _, err := NewS3Cache(context.Background(), S3Options{}); err == nil {
		t.Error("NewS3Cache without bucket should fail")
	}
}
