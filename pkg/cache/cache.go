// Package cache stores rendered artifacts so unchanged subgraphs skip the
// render engine on the next run.
//
// # Backends
//
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: shared cache in Redis, for teams rendering the same
//     snapshots on several machines
//   - [S3Cache]: objects in an S3 (or S3-compatible) bucket
//   - [NullCache]: never stores anything
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash of the DOT source plus
// everything else that changes the output (engine and format):
//
//	key := keyer.ArtifactKey(cache.Hash([]byte(dot)), eng.Name(), "png")
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // reuse data
//	}
//
// Cache failures are never fatal to a batch; callers treat errors as misses.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
