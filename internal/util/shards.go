package util

import "runtime"

// maxShards bounds both the automatic and the requested shard count.
const maxShards = 256

// NextPow2 returns the smallest power of two >= x (1 for x <= 1),
// clamped to 1<<63 on overflow.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}

// ShardCount resolves a requested shard count for a cache of the given
// capacity:
//   - requested 0 or 1 => 1 (one lock for the whole cache)
//   - requested < 0    => nextPow2(2*GOMAXPROCS)
//   - otherwise        => nextPow2(requested)
//
// The result is clamped to [1..256] and never exceeds a positive capacity,
// so that no shard is left with zero room.
func ShardCount(requested, capacity int) int {
	n := 1
	switch {
	case requested < 0:
		n = int(NextPow2(uint64(2 * max(runtime.GOMAXPROCS(0), 1))))
	case requested > 1:
		n = int(NextPow2(uint64(requested)))
	}
	n = min(n, maxShards)
	if capacity > 0 && n > capacity {
		n = capacity
	}
	return max(n, 1)
}

// SplitCapacity distributes capacity over n shards; the parts sum to capacity.
func SplitCapacity(capacity, n int) []int {
	parts := make([]int, n)
	base, extra := capacity/n, capacity%n
	for i := range parts {
		parts[i] = base
		if i < extra {
			parts[i]++
		}
	}
	return parts
}

// ShardIndex maps a 64-bit hash to a shard index. A power-of-two shard
// count takes the mask path; other counts fall back to modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if shards&(shards-1) == 0 {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
