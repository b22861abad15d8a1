package lru

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/evictcache/policy"
)

// --- test doubles ---

type eviction struct {
	key    int
	val    int
	reason policy.EvictReason
}

type countingMetrics struct {
	hits, misses, evicts, size int
}

func (m *countingMetrics) Hit()                     { m.hits++ }
func (m *countingMetrics) Miss()                    { m.misses++ }
func (m *countingMetrics) Evict(policy.EvictReason) { m.evicts++ }
func (m *countingMetrics) Size(n int)               { m.size = n }

func newRecorded(t *testing.T, capacity int) (*Cache[int, int], *[]eviction) {
	t.Helper()
	var log []eviction
	c, err := New[int, int](capacity, policy.Options[int, int]{
		OnEvict: func(k, v int, r policy.EvictReason) { log = append(log, eviction{k, v, r}) },
	})
	require.NoError(t, err)
	return c, &log
}

// --- tests ---

// Capacity 2 walk-through: reads refresh recency, the tail is always the victim.
func TestLRU_CapacityTwoScenario(t *testing.T) {
	t.Parallel()

	c, log := newRecorded(t, 2)

	c.Put(1, 1)
	c.Put(2, 2)
	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put(3, 3) // evicts 2
	_, ok = c.Get(2)
	assert.False(t, ok)

	c.Put(4, 4) // evicts 1
	_, ok = c.Get(1)
	assert.False(t, ok)

	v, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = c.Get(4)
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	assert.Equal(t, []eviction{
		{2, 2, policy.EvictPolicy},
		{1, 1, policy.EvictPolicy},
	}, *log)
}

// After filling N keys and touching k, the next insert evicts the
// least recently touched of the others and keeps k.
func TestLRU_RecencyProtectsTouchedKey(t *testing.T) {
	t.Parallel()

	const n = 5
	c, log := newRecorded(t, n)
	for k := range n {
		c.Put(k, k)
	}
	_, ok := c.Get(0)
	require.True(t, ok)

	c.Put(100, 100)

	_, ok = c.Peek(0)
	assert.True(t, ok, "touched key must survive")
	_, ok = c.Peek(1)
	assert.False(t, ok, "oldest untouched key must be evicted")
	require.Len(t, *log, 1)
	assert.Equal(t, 1, (*log)[0].key)
}

func TestLRU_OverwriteKeepsLenAndPromotes(t *testing.T) {
	t.Parallel()

	c, log := newRecorded(t, 2)
	c.Put(1, 10)
	c.Put(2, 20)
	c.Put(1, 11) // update promotes 1

	assert.Equal(t, 2, c.Len())
	v, _ := c.Peek(1)
	assert.Equal(t, 11, v)

	c.Put(3, 30)
	require.Len(t, *log, 1)
	assert.Equal(t, 2, (*log)[0].key)
}

func TestLRU_PeekDoesNotPromote(t *testing.T) {
	t.Parallel()

	c, _ := newRecorded(t, 2)
	c.Put(1, 1)
	c.Put(2, 2)
	_, ok := c.Peek(1)
	require.True(t, ok)

	c.Put(3, 3)
	_, ok = c.Peek(1)
	assert.False(t, ok)
}

func TestLRU_ZeroCapacityRetainsNothing(t *testing.T) {
	t.Parallel()

	c, log := newRecorded(t, 0)
	c.Put(1, 1)
	c.Put(2, 2)

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.IsEmpty())
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, []eviction{
		{1, 1, policy.EvictCapacity},
		{2, 2, policy.EvictCapacity},
	}, *log)
}

func TestLRU_NegativeCapacity(t *testing.T) {
	t.Parallel()

	_, err := New[int, int](-1, policy.Options[int, int]{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, policy.ErrNegativeCapacity))
}

func TestLRU_KeysEvictRemovePurge(t *testing.T) {
	t.Parallel()

	c, log := newRecorded(t, 3)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)
	c.Get(1)

	assert.Equal(t, []int{1, 3, 2}, c.Keys())

	k, v, ok := c.Evict()
	require.True(t, ok)
	assert.Equal(t, 2, k)
	assert.Equal(t, 2, v)
	assert.Len(t, *log, 1)

	assert.True(t, c.Remove(3))
	assert.False(t, c.Remove(3))
	assert.Len(t, *log, 1, "explicit removal is not an eviction")

	state := func(k int) policy.TTLState { _, s := c.TTL(k); return s }
	assert.Equal(t, policy.TTLNone, state(1))
	assert.Equal(t, policy.TTLMissing, state(3))
	assert.Equal(t, 0, c.Sweep())

	c.Purge()
	assert.True(t, c.IsEmpty())
	_, _, ok = c.Evict()
	assert.False(t, ok)

	// usable after purge
	c.Put(9, 9)
	assert.Equal(t, []int{9}, c.Keys())
	assert.Equal(t, 3, c.Cap())
}

func TestLRU_MetricsHooks(t *testing.T) {
	t.Parallel()

	m := &countingMetrics{}
	c, err := New[int, int](1, policy.Options[int, int]{Metrics: m})
	require.NoError(t, err)

	c.Put(1, 1)
	c.Get(1)
	c.Get(2)
	c.Put(2, 2)

	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)
	assert.Equal(t, 1, m.evicts)
	assert.Equal(t, 1, m.size)
}
