package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// String keys include strconv/concat costs and often allocate, which is fine
// for an end-to-end benchmark.
func benchmarkMix(b *testing.B, cfg Config, readsPct int) {
	c, err := New(cfg, Options[string, string]{})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })

	// Preload half the capacity to get a realistic hit-rate.
	for i := 0; i < cfg.Capacity/2; i++ {
		c.Put("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1 // hot keyspace (power of two for fast &-mask)

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				c.Put(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache(b *testing.B) {
	for _, cfg := range []Config{
		{Strategy: StrategyLRU, Capacity: 100_000, Shards: 1},
		{Strategy: StrategyLRU, Capacity: 100_000, Shards: -1},
		{Strategy: StrategyLFU, Capacity: 100_000, Shards: 1},
		{Strategy: StrategyLFU, Capacity: 100_000, Shards: -1},
		{Strategy: StrategyTTL, Capacity: 100_000, Shards: -1, TTL: time.Minute},
	} {
		name := string(cfg.Strategy) + "/shards=" + strconv.Itoa(cfg.Shards)
		b.Run(name+"/90r10w", func(b *testing.B) { benchmarkMix(b, cfg, 90) })
		b.Run(name+"/50r50w", func(b *testing.B) { benchmarkMix(b, cfg, 50) })
	}
}
