// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// seed is process-wide so that two caches built in one process route
// every key to the same shard index.
var seed = maphash.MakeSeed()

// Hash returns a 64-bit hash of k for shard routing.
//   - string, []byte-like keys: xxhash
//   - integer keys: FNV-1a over the little-endian bytes (no allocation)
//   - anything else comparable: maphash.Comparable
func Hash[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])

	case uint8:
		return fnv64a(uint64(v))
	case uint16:
		return fnv64a(uint64(v))
	case uint32:
		return fnv64a(uint64(v))
	case uint64:
		return fnv64a(v)
	case uint:
		return fnv64a(uint64(v))
	case uintptr:
		return fnv64a(uint64(v))
	case int8:
		return fnv64a(uint64(uint8(v)))
	case int16:
		return fnv64a(uint64(uint16(v)))
	case int32:
		return fnv64a(uint64(uint32(v)))
	case int64:
		return fnv64a(uint64(v))
	case int:
		return fnv64a(uint64(v))
	default:
		return maphash.Comparable(seed, k)
	}
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// fnv64a hashes the 8 bytes of u and finishes with the murmur3 fmix64
// step; plain FNV-1a leaves the low bits (the ones ShardIndex masks)
// depending only on the low bits of the key.
func fnv64a(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for range 8 {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
