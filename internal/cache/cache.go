// Package cache holds the read cache that sits in front of paginated product
// listings.
package cache

import (
	"context"
	"time"
)

// TagProducts marks every cached product listing. Any product write flushes it.
const TagProducts = "products"

// DefaultTTL is how long a listing stays cached.
const DefaultTTL = 300 * time.Second

// Store is a tagged key-value cache. Implementations must be safe for
// concurrent use. Backend failures are logged by the implementation and
// surface as misses; a cache outage never fails a request.
type Store interface {
	// Get returns the value stored under key, if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl and attaches the given tags.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string)

	// InvalidateAll drops every entry.
	InvalidateAll(ctx context.Context)

	// InvalidateByTag drops every entry carrying tag.
	InvalidateByTag(ctx context.Context, tag string)

	// Generation returns the invalidation generation of tag. It advances on
	// every InvalidateByTag(tag) and InvalidateAll.
	Generation(ctx context.Context, tag string) uint64

	// SetIfCurrent is Set with tag attached, skipped when tag's generation
	// no longer equals gen. It reports whether the value was stored.
	SetIfCurrent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string, gen uint64) bool
}
