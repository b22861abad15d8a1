// Package policy defines the contract shared by every eviction policy
// (LRU, LFU, TTL) together with the observability hooks they report to.
//
// Policies in the sub-packages are plain data structures: they are not safe
// for concurrent use and never start goroutines. Wrap them with package
// cache when several goroutines share one instance.
package policy

import "time"

// Policy is a fixed-capacity key/value store with a policy-chosen victim.
// All three policies expose the same surface so callers can be written
// against Policy and swap the strategy.
//
// Operations are O(1) amortized unless stated otherwise.
type Policy[K comparable, V any] interface {
	// Get returns the value for k. A hit counts as a use and may reorder
	// policy metadata (recency, frequency). A miss is (zero, false).
	Get(k K) (V, bool)

	// Peek is Get without any side effect on ordering or metadata.
	Peek(k K) (V, bool)

	// Put inserts or updates k→v. When k is new and the cache is full,
	// exactly one victim is evicted first.
	Put(k K, v V)

	// Remove deletes k. Explicit removal is not reported as an eviction.
	Remove(k K) bool

	// Evict removes the entry the policy would evict next and returns it.
	Evict() (K, V, bool)

	// Sweep erases entries that are logically dead and returns how many
	// were erased. Policies without expiry return 0.
	Sweep() int

	// TTL reports the remaining lifetime of k.
	TTL(k K) (time.Duration, TTLState)

	// Keys returns resident keys ordered so that the next victim is last.
	Keys() []K

	// Purge drops every entry without eviction notifications.
	Purge()

	Len() int
	Cap() int
	IsEmpty() bool
}

// TTLState tells apart the answers of Policy.TTL.
type TTLState int

const (
	// TTLMissing means there is no live entry for the key.
	TTLMissing TTLState = iota
	// TTLNone means the entry is live and never expires.
	TTLNone
	// TTLLive means the entry is live and expires after the returned duration.
	TTLLive
)

func (s TTLState) String() string {
	switch s {
	case TTLNone:
		return "none"
	case TTLLive:
		return "live"
	default:
		return "missing"
	}
}
