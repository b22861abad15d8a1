package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/evictcache/cache"
)

// StatsSource is satisfied by every cache.Cache.
type StatsSource interface {
	Stats() cache.Stats
}

// StatsCollector reads a cache.Stats snapshot on every scrape. It covers
// what the Metrics hook cannot see: capacity, loader activity and the hit
// ratio.
type StatsCollector struct {
	src StatsSource

	capacity   *prometheus.Desc
	hitRatio   *prometheus.Desc
	loads      *prometheus.Desc
	loadErrors *prometheus.Desc
}

// NewStatsCollector builds a collector for src; register it with
// prometheus.Registerer.Register or MustRegister.
func NewStatsCollector(src StatsSource, ns, sub string, constLabels prometheus.Labels) *StatsCollector {
	name := func(n string) string { return prometheus.BuildFQName(ns, sub, n) }
	return &StatsCollector{
		src:        src,
		capacity:   prometheus.NewDesc(name("capacity_entries"), "Configured entry capacity", []string{"strategy"}, constLabels),
		hitRatio:   prometheus.NewDesc(name("hit_ratio"), "Hits over lookups since start", nil, constLabels),
		loads:      prometheus.NewDesc(name("loads_total"), "Loader invocations from GetOrLoad", nil, constLabels),
		loadErrors: prometheus.NewDesc(name("load_errors_total"), "Loader invocations that failed", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.hitRatio
	ch <- c.loads
	ch <- c.loadErrors
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), string(s.Strategy))
	ch <- prometheus.MustNewConstMetric(c.hitRatio, prometheus.GaugeValue, s.HitRatio())
	ch <- prometheus.MustNewConstMetric(c.loads, prometheus.CounterValue, float64(s.Loads))
	ch <- prometheus.MustNewConstMetric(c.loadErrors, prometheus.CounterValue, float64(s.LoadErrors))
}

var _ prometheus.Collector = (*StatsCollector)(nil)
