package cache

import (
	"github.com/IvanBrykalov/evictcache/internal/util"
	"github.com/IvanBrykalov/evictcache/policy"
)

// counters are shared by every shard of one cache. Each counter sits on
// its own cache line.
type counters struct {
	hits        util.PaddedAtomicUint64
	misses      util.PaddedAtomicUint64
	evictions   util.PaddedAtomicUint64
	expirations util.PaddedAtomicUint64
	loads       util.PaddedAtomicUint64
	loadErrors  util.PaddedAtomicUint64
	entries     util.PaddedAtomicInt64
}

// shardMetrics sits between one shard's policy and the user Metrics. It
// feeds the cache counters and turns the per-shard Size signal into a
// cache-wide one.
type shardMetrics struct {
	user policy.Metrics
	c    *counters
	last int // entries last reported by this shard; guarded by the shard lock
}

func (m *shardMetrics) Hit() {
	m.c.hits.Add(1)
	m.user.Hit()
}

func (m *shardMetrics) Miss() {
	m.c.misses.Add(1)
	m.user.Miss()
}

func (m *shardMetrics) Evict(reason policy.EvictReason) {
	m.c.evictions.Add(1)
	if reason == policy.EvictTTL {
		m.c.expirations.Add(1)
	}
	m.user.Evict(reason)
}

func (m *shardMetrics) Size(entries int) {
	total := m.c.entries.Add(int64(entries - m.last))
	m.last = entries
	m.user.Size(int(total))
}

var _ policy.Metrics = (*shardMetrics)(nil)
