package cache

import (
	"context"
	"time"
)

// NullCache stores nothing: every Get misses and every Set is dropped.
// It stands in when caching is disabled with --no-cache or backend "none".
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *NullCache) Delete(context.Context, string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

// Enabled reports whether c can hold entries. Nil and [NullCache] cannot;
// callers use this to skip lookups and stores that could never succeed.
func Enabled(c Cache) bool {
	if c == nil {
		return false
	}
	_, null := c.(*NullCache)
	return !null
}

var _ Cache = (*NullCache)(nil)
