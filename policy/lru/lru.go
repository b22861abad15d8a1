// Package lru implements the Least-Recently-Used eviction policy.
package lru

import (
	"fmt"
	"time"

	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

const name = "lru"

// preallocLimit caps the slots reserved up front for very large capacities.
const preallocLimit = 1 << 16

type entry[K comparable, V any] struct {
	key K
	val V
}

// Cache is a classic "move-to-front" Least-Recently-Used cache.
// Reads and updates count as uses; the victim is always the tail of the list.
// Not safe for concurrent use.
type Cache[K comparable, V any] struct {
	cap   int
	arena *list.Arena[entry[K, V]]
	order *list.List[entry[K, V]] // front = MRU, back = LRU
	index map[K]list.Index
	opt   policy.Options[K, V]
}

var _ policy.Policy[string, int] = (*Cache[string, int])(nil)

// New returns an empty LRU cache holding at most capacity entries.
// A zero capacity retains nothing: every Put is reported as an EvictCapacity eviction.
func New[K comparable, V any](capacity int, opt policy.Options[K, V]) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("lru: capacity %d: %w", capacity, policy.ErrNegativeCapacity)
	}
	hint := min(capacity, preallocLimit)
	a := list.NewArena[entry[K, V]](hint + 2)
	return &Cache[K, V]{
		cap:   capacity,
		arena: a,
		order: list.New(a),
		index: make(map[K]list.Index, hint),
		opt:   opt.WithDefaults(),
	}, nil
}

// Get returns the value for k and promotes it to MRU.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	i, ok := c.index[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.order.MoveToFront(i)
	c.opt.Metrics.Hit()
	return c.arena.At(i).val, true
}

// Peek returns the value for k without promoting it.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	i, ok := c.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return c.arena.At(i).val, true
}

// Put inserts or updates k→v and promotes it to MRU.
// Inserting into a full cache evicts the LRU entry first.
func (c *Cache[K, V]) Put(k K, v V) {
	if i, ok := c.index[k]; ok {
		c.arena.At(i).val = v
		c.order.MoveToFront(i)
		return
	}
	if c.cap == 0 {
		c.opt.Evicted(name, k, v, policy.EvictCapacity)
		return
	}
	if len(c.index) >= c.cap {
		c.evictBack()
	}
	i := c.arena.Alloc(entry[K, V]{key: k, val: v})
	c.order.PushFront(i)
	c.index[k] = i
	c.opt.Metrics.Size(len(c.index))
}

// Remove deletes k if present.
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

// Evict removes the LRU entry.
func (c *Cache[K, V]) Evict() (K, V, bool) {
	e, ok := c.evictBack()
	if ok {
		c.opt.Metrics.Size(len(c.index))
	}
	return e.key, e.val, ok
}

// Sweep is a no-op: LRU entries never expire.
func (c *Cache[K, V]) Sweep() int { return 0 }

// TTL reports TTLNone for resident keys.
func (c *Cache[K, V]) TTL(k K) (time.Duration, policy.TTLState) {
	if _, ok := c.index[k]; ok {
		return 0, policy.TTLNone
	}
	return 0, policy.TTLMissing
}

// Keys returns keys from MRU to LRU.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for i := range c.order.All() {
		keys = append(keys, c.arena.At(i).key)
	}
	return keys
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.arena.Reset()
	c.order = list.New(c.arena)
	c.index = make(map[K]list.Index)
	c.opt.Metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int { return len(c.index) }

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.cap }

// IsEmpty reports whether no entry is resident.
func (c *Cache[K, V]) IsEmpty() bool { return len(c.index) == 0 }

// evictBack pops the LRU node, erases it from the index and notifies.
func (c *Cache[K, V]) evictBack() (entry[K, V], bool) {
	i, ok := c.order.RemoveBack()
	if !ok {
		return entry[K, V]{}, false
	}
	e := *c.arena.At(i)
	delete(c.index, e.key)
	c.arena.Free(i)
	c.opt.Evicted(name, e.key, e.val, policy.EvictPolicy)
	return e, true
}
