package cache

import (
	"context"
	"time"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Cache is a policy-driven in-memory key/value cache.
// All methods are safe for concurrent use by multiple goroutines.
//
// Typical complexity for operations is amortized O(1): a map lookup plus
// constant-time list adjustments under a shard lock. Keys, Purge, Sweep
// and Len walk every shard.
type Cache[K comparable, V any] interface {
	// Policy is the shared surface of the LRU, LFU and TTL strategies.
	// With more than one shard, Evict and Keys follow the policy order
	// within each shard only.
	policy.Policy[K, V]

	// PutWithTTL inserts or updates k→v with a per-key TTL (relative duration).
	// A non-positive ttl disables expiration for this entry. Strategies
	// without expiry store the entry as with Put.
	PutWithTTL(k K, v V, ttl time.Duration)

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// Close marks the cache closed: reads (Get, Peek, TTL) miss, writes are
	// ignored and GetOrLoad returns ErrClosed. Current implementation is a soft close
	// and returns nil.
	Close() error
}
