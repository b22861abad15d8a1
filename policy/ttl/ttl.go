// Package ttl implements a fixed-capacity cache whose entries expire a fixed
// duration after their last write.
//
// Expiry is lazy: an expired entry is erased when it is read, and every Put
// first sweeps all expired entries. Nothing runs in the background; callers
// that want proactive expiry call Sweep on their own timer.
//
// When the cache is full and nothing has expired, the entry with the oldest
// insert-or-refresh time is evicted. A Put on an existing key refreshes both
// its expiry and its age.
package ttl

import (
	"fmt"
	"math"
	"time"

	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

const name = "ttl"

const preallocLimit = 1 << 16

type entry[K comparable, V any] struct {
	key K
	val V
	exp int64 // absolute UnixNano deadline; 0 = never
}

// Cache is a TTL cache. Not safe for concurrent use.
type Cache[K comparable, V any] struct {
	cap   int
	ttl   time.Duration
	arena *list.Arena[entry[K, V]]
	order *list.List[entry[K, V]] // front = newest write, back = oldest
	index map[K]list.Index

	// earliest is a lower bound of the smallest deadline in the cache;
	// 0 when no resident entry can expire. Sweeps return immediately
	// while now <= earliest.
	earliest int64

	opt policy.Options[K, V]
}

var _ policy.Policy[string, int] = (*Cache[string, int])(nil)

// New returns an empty cache holding at most capacity entries that expire
// ttl after their last Put.
func New[K comparable, V any](capacity int, ttl time.Duration, opt policy.Options[K, V]) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("ttl: capacity %d: %w", capacity, policy.ErrNegativeCapacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl: duration %v: %w", ttl, policy.ErrNonPositiveTTL)
	}
	hint := min(capacity, preallocLimit)
	a := list.NewArena[entry[K, V]](hint + 2)
	return &Cache[K, V]{
		cap:   capacity,
		ttl:   ttl,
		arena: a,
		order: list.New(a),
		index: make(map[K]list.Index, hint),
		opt:   opt.WithDefaults(),
	}, nil
}

// Get returns the value for k. An expired entry is erased and reported as a miss.
// Reading never extends the lifetime of an entry.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	i, ok := c.index[k]
	if !ok {
		c.opt.Metrics.Miss()
		return zero, false
	}
	e := c.arena.At(i)
	if c.expired(e, c.now()) {
		c.drop(i, policy.EvictTTL)
		c.opt.Metrics.Size(len(c.index))
		c.opt.Metrics.Miss()
		return zero, false
	}
	c.opt.Metrics.Hit()
	return e.val, true
}

// Peek is Get without erasing expired entries or touching metrics.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	var zero V
	i, ok := c.index[k]
	if !ok {
		return zero, false
	}
	e := c.arena.At(i)
	if c.expired(e, c.now()) {
		return zero, false
	}
	return e.val, true
}

// Put inserts or updates k→v with the cache-wide TTL.
func (c *Cache[K, V]) Put(k K, v V) { c.put(k, v, c.ttl) }

// PutWithTTL is Put with a per-entry duration. A non-positive d stores the
// entry without expiry; it can still be evicted for room.
func (c *Cache[K, V]) PutWithTTL(k K, v V, d time.Duration) { c.put(k, v, d) }

func (c *Cache[K, V]) put(k K, v V, d time.Duration) {
	now := c.now()
	c.sweep(now)

	exp := deadline(now, d)

	if i, ok := c.index[k]; ok {
		e := c.arena.At(i)
		e.val, e.exp = v, exp
		c.order.MoveToFront(i)
		c.track(exp)
		return
	}
	if c.cap == 0 {
		c.opt.Evicted(name, k, v, policy.EvictCapacity)
		return
	}
	if len(c.index) >= c.cap {
		if i, ok := c.order.Back(); ok {
			c.drop(i, policy.EvictPolicy)
		}
	}
	i := c.arena.Alloc(entry[K, V]{key: k, val: v, exp: exp})
	c.order.PushFront(i)
	c.index[k] = i
	c.track(exp)
	c.opt.Metrics.Size(len(c.index))
}

// Remove deletes k if present, expired or not.
func (c *Cache[K, V]) Remove(k K) bool {
	i, ok := c.index[k]
	if !ok {
		return false
	}
	c.order.Remove(i)
	delete(c.index, k)
	c.arena.Free(i)
	c.opt.Metrics.Size(len(c.index))
	return true
}

// Evict sweeps expired entries, then removes the live entry with the
// oldest write.
func (c *Cache[K, V]) Evict() (K, V, bool) {
	c.Sweep()
	i, ok := c.order.Back()
	if !ok {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	e := c.drop(i, policy.EvictPolicy)
	c.opt.Metrics.Size(len(c.index))
	return e.key, e.val, true
}

// Sweep erases every expired entry and returns how many were erased.
// It is O(n) when some entry may have expired and O(1) otherwise.
func (c *Cache[K, V]) Sweep() int { return c.sweep(c.now()) }

// TTL returns the remaining lifetime of k. Expired keys are TTLMissing.
func (c *Cache[K, V]) TTL(k K) (time.Duration, policy.TTLState) {
	i, ok := c.index[k]
	if !ok {
		return 0, policy.TTLMissing
	}
	e := c.arena.At(i)
	if e.exp == 0 {
		return 0, policy.TTLNone
	}
	now := c.now()
	if c.expired(e, now) {
		return 0, policy.TTLMissing
	}
	return time.Duration(e.exp - now), policy.TTLLive
}

// Keys returns live keys from the newest write to the oldest.
func (c *Cache[K, V]) Keys() []K {
	now := c.now()
	keys := make([]K, 0, len(c.index))
	for i := range c.order.All() {
		if e := c.arena.At(i); !c.expired(e, now) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.arena.Reset()
	c.order = list.New(c.arena)
	c.index = make(map[K]list.Index)
	c.earliest = 0
	c.opt.Metrics.Size(0)
}

// Len returns the number of physically resident entries, which may include
// expired entries not yet discovered by a read or sweep.
func (c *Cache[K, V]) Len() int { return len(c.index) }

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.cap }

// IsEmpty reports whether no entry is resident.
func (c *Cache[K, V]) IsEmpty() bool { return len(c.index) == 0 }

// Duration returns the cache-wide TTL.
func (c *Cache[K, V]) Duration() time.Duration { return c.ttl }

func (c *Cache[K, V]) sweep(now int64) int {
	if c.earliest == 0 || now <= c.earliest {
		return 0
	}
	n := 0
	var next int64
	for i := range c.order.Backward() {
		e := c.arena.At(i)
		if c.expired(e, now) {
			c.drop(i, policy.EvictTTL)
			n++
			continue
		}
		if e.exp != 0 && (next == 0 || e.exp < next) {
			next = e.exp
		}
	}
	c.earliest = next
	if n > 0 {
		c.opt.Metrics.Size(len(c.index))
	}
	return n
}

func (c *Cache[K, V]) track(exp int64) {
	if exp != 0 && (c.earliest == 0 || exp < c.earliest) {
		c.earliest = exp
	}
}

// drop unlinks node i, erases its key, frees it and notifies.
func (c *Cache[K, V]) drop(i list.Index, reason policy.EvictReason) entry[K, V] {
	e := *c.arena.At(i)
	c.order.Remove(i)
	delete(c.index, e.key)
	c.arena.Free(i)
	c.opt.Evicted(name, e.key, e.val, reason)
	return e
}

// deadline converts a relative duration into an absolute UnixNano deadline,
// saturating at math.MaxInt64. A non-positive d returns 0 (no expiry).
func deadline(now int64, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	if now > 0 && int64(d) > math.MaxInt64-now {
		return math.MaxInt64
	}
	return now + int64(d)
}

func (c *Cache[K, V]) expired(e *entry[K, V], now int64) bool {
	return e.exp != 0 && now > e.exp
}

func (c *Cache[K, V]) now() int64 { return c.opt.Clock.NowUnixNano() }
