package cache

import (
	"sync"
	"time"

	"github.com/IvanBrykalov/evictcache/policy"
)

// shard is an independent partition of the cache: one policy instance
// behind one mutex. Every method holds the lock for its whole duration,
// so each operation is linearizable with respect to the shard.
type shard[K comparable, V any] struct {
	mu  sync.Mutex
	pol policy.Policy[K, V]

	// withTTL is pol's per-entry TTL writer, nil for policies without expiry.
	withTTL func(k K, v V, ttl time.Duration)
}

type ttlWriter[K comparable, V any] interface {
	PutWithTTL(k K, v V, ttl time.Duration)
}

func newShard[K comparable, V any](pol policy.Policy[K, V]) *shard[K, V] {
	s := &shard[K, V]{pol: pol}
	if w, ok := pol.(ttlWriter[K, V]); ok {
		s.withTTL = w.PutWithTTL
	}
	return s
}

func (s *shard[K, V]) get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Get(k)
}

func (s *shard[K, V]) peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Peek(k)
}

func (s *shard[K, V]) put(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pol.Put(k, v)
}

func (s *shard[K, V]) putWithTTL(k K, v V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.withTTL == nil {
		s.pol.Put(k, v)
		return
	}
	s.withTTL(k, v, ttl)
}

func (s *shard[K, V]) remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Remove(k)
}

func (s *shard[K, V]) evict() (K, V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Evict()
}

func (s *shard[K, V]) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Sweep()
}

func (s *shard[K, V]) ttl(k K) (time.Duration, policy.TTLState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.TTL(k)
}

func (s *shard[K, V]) keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Keys()
}

func (s *shard[K, V]) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pol.Purge()
}

func (s *shard[K, V]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pol.Len()
}
