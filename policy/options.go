package policy

import (
	"context"
	"log/slog"
	"time"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictPolicy: victim chosen by the policy to make room, or by an explicit Evict call.
	EvictPolicy EvictReason = iota
	// EvictTTL: expired entry discovered on access or by a sweep.
	EvictTTL
	// EvictCapacity: rejected straight away by a zero-capacity cache.
	EvictCapacity
)

func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictCapacity:
		return "capacity"
	default:
		return "policy"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowUnixNano implements Clock.
func (SystemClock) NowUnixNano() int64 { return time.Now().UnixNano() }

// Options configures the observability side of a policy. Zero values are safe;
// WithDefaults fills them in:
//   - nil Metrics => NoopMetrics
//   - nil Clock   => SystemClock
//   - nil Logger  => discard
type Options[K comparable, V any] struct {
	// OnEvict is called synchronously for every eviction. When the policy is
	// wrapped by package cache the call happens under the cache lock, so the
	// callback must not use the same cache.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics
	Clock   Clock

	// Logger receives Debug records for evictions.
	Logger *slog.Logger
}

// WithDefaults returns a copy of o with nil fields replaced by defaults.
func (o Options[K, V]) WithDefaults() Options[K, V] {
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Evicted reports one eviction to metrics, the logger and OnEvict.
// name identifies the policy in log records.
func (o Options[K, V]) Evicted(name string, k K, v V, reason EvictReason) {
	o.Metrics.Evict(reason)
	if o.Logger.Enabled(context.Background(), slog.LevelDebug) {
		o.Logger.Debug("cache eviction",
			slog.String("policy", name),
			slog.Any("key", k),
			slog.String("reason", reason.String()))
	}
	if o.OnEvict != nil {
		o.OnEvict(k, v, reason)
	}
}
