// Package lfu implements the Least-Frequently-Used eviction policy.
//
// Every resident entry sits in the bucket of its access frequency; each bucket
// is its own MRU→LRU ordered list in a shared arena. The victim is the LRU
// entry of the lowest-frequency bucket, so ties on frequency are broken by
// recency. All operations are O(1).
package lfu

import (
	"fmt"
	"time"

	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

const name = "lfu"

const preallocLimit = 1 << 16

type entry[K comparable, V any] struct {
	key  K
	val  V
	freq int
}

// bucket holds the entries of one frequency. Buckets are chained in
// ascending frequency order and exist only while non-empty.
type bucket[K comparable, V any] struct {
	freq  int
	items *list.List[entry[K, V]]
	prev  *bucket[K, V]
	next  *bucket[K, V]
}

// Cache is an LFU cache with LRU tie-break. Not safe for concurrent use.
type Cache[K comparable, V any] struct {
	cap     int
	arena   *list.Arena[entry[K, V]]
	index   map[K]list.Index
	buckets map[int]*bucket[K, V]
	lowest  *bucket[K, V] // head of the frequency chain

	// minFreq is the smallest frequency with a non-empty bucket, 0 when empty.
	minFreq int

	opt policy.Options[K, V]
}

var _ policy.Policy[string, int] = (*Cache[string, int])(nil)

// New returns an empty LFU cache holding at most capacity entries.
// A zero capacity retains nothing: every Put is reported as an EvictCapacity eviction.
func New[K comparable, V any](capacity int, opt policy.Options[K, V]) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("lfu: capacity %d: %w", capacity, policy.ErrNegativeCapacity)
	}
	hint := min(capacity, preallocLimit)
	return &Cache[K, V]{
		cap:     capacity,
		arena:   list.NewArena[entry[K, V]](hint + 4),
		index:   make(map[K]list.Index, hint),
		buckets: make(map[int]*bucket[K, V]),
		opt:     opt.WithDefaults(),
	}, nil
}

// Get returns the value for k and bumps its frequency.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	i, ok := c.index[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	v := c.arena.At(i).val
	c.bump(i)
	c.opt.Metrics.Hit()
	return v, true
}

// Peek returns the value for k without touching its frequency.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	i, ok := c.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return c.arena.At(i).val, true
}

// Frequency returns the access count of k.
func (c *Cache[K, V]) Frequency(k K) (int, bool) {
	i, ok := c.index[k]
	if !ok {
		return 0, false
	}
	return c.arena.At(i).freq, true
}

// Put inserts or updates k→v. An update counts as a use.
// A new key starts at frequency 1; inserting into a full cache first evicts
// the LRU entry of the lowest-frequency bucket.
func (c *Cache[K, V]) Put(k K, v V) {
	if i, ok := c.index[k]; ok {
		c.arena.At(i).val = v
		c.bump(i)
		return
	}
	if c.cap == 0 {
		c.opt.Evicted(name, k, v, policy.EvictCapacity)
		return
	}
	if len(c.index) >= c.cap {
		c.evictMin()
	}

	b := c.buckets[1]
	if b == nil {
		b = c.newBucket(nil, 1)
	}
	i := c.arena.Alloc(entry[K, V]{key: k, val: v, freq: 1})
	b.items.PushFront(i)
	c.index[k] = i
	c.minFreq = 1 // a fresh insert always resets the floor
	c.opt.Metrics.Size(len(c.index))
}

// Remove deletes k if present.
func (c *Cache[K, V]) Remove(k K) bool {
	i, ok := c.index[k]
	if !ok {
		return false
	}
	c.unlink(i)
	c.opt.Metrics.Size(len(c.index))
	return true
}

// Evict removes the LRU entry of the lowest-frequency bucket.
func (c *Cache[K, V]) Evict() (K, V, bool) {
	e, ok := c.evictMin()
	if ok {
		c.opt.Metrics.Size(len(c.index))
	}
	return e.key, e.val, ok
}

// Sweep is a no-op: LFU entries never expire.
func (c *Cache[K, V]) Sweep() int { return 0 }

// TTL reports TTLNone for resident keys.
func (c *Cache[K, V]) TTL(k K) (time.Duration, policy.TTLState) {
	if _, ok := c.index[k]; ok {
		return 0, policy.TTLNone
	}
	return 0, policy.TTLMissing
}

// Keys returns keys from the highest frequency down to the lowest,
// MRU before LRU within one frequency. The next victim is last.
func (c *Cache[K, V]) Keys() []K {
	var chain []*bucket[K, V]
	for b := c.lowest; b != nil; b = b.next {
		chain = append(chain, b)
	}
	keys := make([]K, 0, len(c.index))
	for j := len(chain) - 1; j >= 0; j-- {
		for i := range chain[j].items.All() {
			keys = append(keys, c.arena.At(i).key)
		}
	}
	return keys
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.arena.Reset()
	c.index = make(map[K]list.Index)
	c.buckets = make(map[int]*bucket[K, V])
	c.lowest = nil
	c.minFreq = 0
	c.opt.Metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int { return len(c.index) }

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.cap }

// IsEmpty reports whether no entry is resident.
func (c *Cache[K, V]) IsEmpty() bool { return len(c.index) == 0 }

// bump moves node i from bucket f to bucket f+1.
func (c *Cache[K, V]) bump(i list.Index) {
	f := c.arena.At(i).freq
	b := c.buckets[f]
	b.items.Remove(i)

	nb := c.buckets[f+1]
	if nb == nil {
		nb = c.newBucket(b, f+1)
	}
	if b.items.Len() == 0 {
		c.dropBucket(b)
		if f == c.minFreq {
			c.minFreq = f + 1
		}
	}
	// newBucket may have grown the arena; re-read the slot.
	c.arena.At(i).freq = f + 1
	nb.items.PushFront(i)
}

// evictMin evicts the tail of the minFreq bucket.
func (c *Cache[K, V]) evictMin() (entry[K, V], bool) {
	b := c.buckets[c.minFreq]
	if b == nil {
		return entry[K, V]{}, false
	}
	i, _ := b.items.Back()
	e := c.unlink(i)
	c.opt.Evicted(name, e.key, e.val, policy.EvictPolicy)
	return e, true
}

// unlink detaches node i from its bucket and the index, frees it and keeps
// minFreq pointing at the lowest non-empty bucket.
func (c *Cache[K, V]) unlink(i list.Index) entry[K, V] {
	e := *c.arena.At(i)
	b := c.buckets[e.freq]
	b.items.Remove(i)
	if b.items.Len() == 0 {
		next := b.next
		c.dropBucket(b)
		if e.freq == c.minFreq {
			c.minFreq = 0
			if next != nil {
				c.minFreq = next.freq
			}
		}
	}
	delete(c.index, e.key)
	c.arena.Free(i)
	return e
}

// newBucket creates the bucket for freq and chains it right after prev
// (at the head of the chain when prev is nil).
func (c *Cache[K, V]) newBucket(prev *bucket[K, V], freq int) *bucket[K, V] {
	b := &bucket[K, V]{freq: freq, items: list.New(c.arena), prev: prev}
	if prev == nil {
		b.next = c.lowest
		c.lowest = b
	} else {
		b.next = prev.next
		prev.next = b
	}
	if b.next != nil {
		b.next.prev = b
	}
	c.buckets[freq] = b
	return b
}

// dropBucket unchains an empty bucket and releases its sentinels.
func (c *Cache[K, V]) dropBucket(b *bucket[K, V]) {
	if b.prev == nil {
		c.lowest = b.next
	} else {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	delete(c.buckets, b.freq)
	b.items.Release()
}
