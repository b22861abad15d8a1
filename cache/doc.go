// Package cache makes the eviction policies of package policy safe for
// concurrent use and adds what a shared cache needs around them:
// sharding, read-through loading, counters and a sweeper helper.
//
// Design
//
//   - Concurrency: every policy instance sits behind its own sync.Mutex and
//     each public method holds that lock for its whole duration. With the
//     default single shard the cache keeps the exact global eviction order
//     of its policy. Config.Shards > 1 trades that for less contention: keys
//     are routed by hash (xxhash for strings) and each shard evicts on its
//     own.
//
//   - Policies: Config.Strategy selects LRU, LFU or TTL. They are the same
//     structures found in policy/lru, policy/lfu and policy/ttl.
//
//   - TTL: StrategyTTL expires entries lazily on read and on every write.
//     RunSweeper erases expired entries periodically so that idle entries
//     do not hold memory.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using singleflight.
//     If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals, with
//     Size reported cache-wide. Stats returns the same counters as a snapshot.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every eviction
//     under the shard lock.
//
// Basic usage
//
//	c, err := cache.New[string, []byte](cache.Config{
//	    Strategy: cache.StrategyLRU,
//	    Capacity: 10_000,
//	}, cache.Options[string, []byte]{})
//	if err != nil {
//	    return err
//	}
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//
// With TTL and a sweeper
//
//	cfg := cache.Config{Strategy: cache.StrategyTTL, Capacity: 1024, TTL: time.Minute}
//	c, _ := cache.New[string, string](cfg, cache.Options[string, string]{})
//	go func() { _ = cache.RunSweeper(ctx, c, 10*time.Second) }()
//
// From a YAML file
//
//	cfg, err := cache.LoadConfig("cache.yaml")
//
// Exporting metrics
//
//	m := prom.New(nil, "evictcache", "demo", nil) // implements policy.Metrics
//	c, _ := cache.New[string, []byte](cfg, cache.Options[string, []byte]{Metrics: m})
package cache
