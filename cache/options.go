package cache

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Options configures the behavior around the eviction policy. Zero values
// are safe; defaults are applied in New():
//   - nil Metrics => policy.NoopMetrics
//   - nil Clock   => policy.SystemClock
//   - nil Logger  => discard
type Options[K comparable, V any] struct {
	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// Observability
	// OnEvict is called on eviction under the shard lock; keep callbacks
	// lightweight and never call back into the same cache.
	OnEvict func(k K, v V, reason policy.EvictReason)
	Metrics policy.Metrics

	// Clock allows overriding the time source (tests).
	Clock policy.Clock

	Logger *slog.Logger
}

// policyOptions derives the options handed to one shard's policy.
func (o Options[K, V]) policyOptions(m policy.Metrics, shard int, shards int) policy.Options[K, V] {
	logger := o.Logger
	if shards > 1 {
		logger = logger.With(slog.Int("shard", shard))
	}
	return policy.Options[K, V]{
		OnEvict: o.OnEvict,
		Metrics: m,
		Clock:   o.Clock,
		Logger:  logger,
	}
}

func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Metrics == nil {
		o.Metrics = policy.NoopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = policy.SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
