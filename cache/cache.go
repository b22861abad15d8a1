package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/evictcache/internal/singleflight"
	"github.com/IvanBrykalov/evictcache/internal/util"
	"github.com/IvanBrykalov/evictcache/policy"
)

var (
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrClosed is returned by GetOrLoad after Close.
	ErrClosed = errors.New("cache: closed")
)

// cache routes every key to one shard. With a single shard it is exactly
// the wrapped policy behind one mutex.
type cache[K comparable, V any] struct {
	shards   []*shard[K, V]
	strategy Strategy
	capacity int

	closed atomic.Bool
	cursor atomic.Uint64 // start shard for the next cache-wide Evict
	stats  *counters

	loader func(ctx context.Context, k K) (V, error)
	sf     singleflight.Group[K, V]
	logger *slog.Logger
}

// New validates cfg and constructs a cache with the provided Options.
// Defaults:
//   - nil Metrics => policy.NoopMetrics
//   - nil Clock   => wall clock
//   - nil Logger  => discard
//
// Shards resolves through util.ShardCount; capacity is split so that the
// per-shard capacities sum to cfg.Capacity.
func New[K comparable, V any](cfg Config, opt Options[K, V]) (Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opt = opt.withDefaults()

	n := util.ShardCount(cfg.Shards, cfg.Capacity)
	c := &cache[K, V]{
		shards:   make([]*shard[K, V], n),
		strategy: cfg.Strategy,
		capacity: cfg.Capacity,
		stats:    &counters{},
		loader:   opt.Loader,
		logger:   opt.Logger,
	}
	for i, capacity := range util.SplitCapacity(cfg.Capacity, n) {
		m := &shardMetrics{user: opt.Metrics, c: c.stats}
		pol, err := newPolicy(cfg, capacity, opt.policyOptions(m, i, n))
		if err != nil {
			return nil, fmt.Errorf("cache: shard %d: %w", i, err)
		}
		c.shards[i] = newShard(pol)
	}

	opt.Logger.Debug("cache created",
		slog.String("strategy", string(cfg.Strategy)),
		slog.Int("capacity", cfg.Capacity),
		slog.Int("shards", n))
	return c, nil
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and a presence flag.
// On hit, the entry is promoted according to the active policy.
func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardFor(k).get(k)
}

// Peek returns the value for k without touching policy metadata or counters.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardFor(k).peek(k)
}

// Put inserts or updates k→v.
func (c *cache[K, V]) Put(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.shardFor(k).put(k, v)
}

// PutWithTTL inserts or updates k→v with a per-key TTL.
func (c *cache[K, V]) PutWithTTL(k K, v V, ttl time.Duration) {
	if c.closed.Load() {
		return
	}
	c.shardFor(k).putWithTTL(k, v, ttl)
}

// Remove deletes k if present and returns true on success.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardFor(k).remove(k)
}

// Evict removes one policy victim. With several shards the victim comes
// from the first non-empty shard in round-robin order.
func (c *cache[K, V]) Evict() (K, V, bool) {
	if c.closed.Load() {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	n := len(c.shards)
	start := int(c.cursor.Add(1) % uint64(n))
	for i := range n {
		if k, v, ok := c.shards[(start+i)%n].evict(); ok {
			return k, v, true
		}
	}
	var (
		zk K
		zv V
	)
	return zk, zv, false
}

// Sweep erases expired entries in every shard and returns how many went.
func (c *cache[K, V]) Sweep() int {
	total := 0
	for _, s := range c.shards {
		total += s.sweep()
	}
	if total > 0 {
		c.logger.Debug("cache sweep", slog.Int("expired", total))
	}
	return total
}

// TTL reports the remaining lifetime of k.
func (c *cache[K, V]) TTL(k K) (time.Duration, policy.TTLState) {
	if c.closed.Load() {
		return 0, policy.TTLMissing
	}
	return c.shardFor(k).ttl(k)
}

// Keys returns resident keys shard by shard, each shard in victim-last order.
func (c *cache[K, V]) Keys() []K {
	if len(c.shards) == 1 {
		return c.shards[0].keys()
	}
	var keys []K
	for _, s := range c.shards {
		keys = append(keys, s.keys()...)
	}
	return keys
}

// Purge drops every entry without eviction notifications.
func (c *cache[K, V]) Purge() {
	for _, s := range c.shards {
		s.purge()
	}
}

// Len returns the total number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// Cap returns the configured capacity.
func (c *cache[K, V]) Cap() int { return c.capacity }

// IsEmpty reports whether no shard holds an entry.
func (c *cache[K, V]) IsEmpty() bool { return c.Len() == 0 }

// Stats returns a snapshot of the cache counters.
func (c *cache[K, V]) Stats() Stats {
	s := c.stats.snapshot()
	s.Strategy = c.strategy
	s.Entries = c.Len()
	s.Capacity = c.capacity
	s.Shards = len(c.shards)
	return s
}

// Close marks the cache as closed. Future reads miss and writes are ignored.
func (c *cache[K, V]) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.logger.Debug("cache closed")
	}
	return nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight). A loaded
// value is stored with Put.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.loader == nil {
		return zero, ErrNoLoader
	}

	v, _, err := c.sf.Do(ctx, k, func(ctx context.Context) (V, error) {
		// double-check after flight join; Peek keeps the counters honest
		if v, ok := c.Peek(k); ok {
			return v, nil
		}
		c.stats.loads.Add(1)
		v, err := c.loader(ctx, k)
		if err != nil {
			c.stats.loadErrors.Add(1)
			return zero, fmt.Errorf("cache: load: %w", err)
		}
		c.Put(k, v)
		return v, nil
	})
	return v, err
}

// ---- helpers ----

func (c *cache[K, V]) shardFor(k K) *shard[K, V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	return c.shards[util.ShardIndex(util.Hash(k), len(c.shards))]
}
