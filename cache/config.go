package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/ttl"
)

// Strategy names the eviction policy behind a cache.
type Strategy string

const (
	// StrategyLRU evicts the least recently used entry.
	StrategyLRU Strategy = "lru"

	// StrategyLFU evicts the least frequently used entry, breaking ties
	// by recency.
	StrategyLFU Strategy = "lfu"

	// StrategyTTL expires entries after a fixed lifetime and, when full,
	// evicts the oldest write.
	StrategyTTL Strategy = "ttl"
)

// Config errors.
var (
	ErrInvalidConfig   = errors.New("cache: invalid config")
	ErrUnknownStrategy = errors.New("cache: unknown strategy")
)

// Config selects and sizes a cache. It is the serializable half of the
// construction input; Options carries the code half (callbacks, loaders).
type Config struct {
	// Strategy determines the eviction policy.
	Strategy Strategy `yaml:"strategy" json:"strategy"`

	// Capacity is the maximum number of resident entries. 0 yields a cache
	// that stores nothing.
	Capacity int `yaml:"capacity" json:"capacity"`

	// TTL is the entry lifetime for StrategyTTL; ignored otherwise.
	TTL time.Duration `yaml:"ttl" json:"ttl"`

	// Shards splits the cache into independently locked partitions.
	// 0 or 1 keeps one lock (global eviction order); a negative value picks
	// a count from GOMAXPROCS.
	Shards int `yaml:"shards" json:"shards"`

	// SweepInterval is how often RunSweeper should erase expired entries
	// (StrategyTTL). 0 disables background sweeping.
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyLRU,
		Capacity:      1000,
		TTL:           5 * time.Minute,
		Shards:        1,
		SweepInterval: time.Minute,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyLRU, StrategyLFU, StrategyTTL:
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownStrategy, c.Strategy)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: %w, got %d", ErrInvalidConfig, policy.ErrNegativeCapacity, c.Capacity)
	}
	if c.Strategy == StrategyTTL && c.TTL <= 0 {
		return fmt.Errorf("%w: %w, got %v", ErrInvalidConfig, policy.ErrNonPositiveTTL, c.TTL)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("%w: sweep_interval must be >= 0, got %v", ErrInvalidConfig, c.SweepInterval)
	}
	return nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Durations are written as Go duration strings ("30s", "5m").
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cache: read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// newPolicy builds one unsynchronized policy instance of the given capacity.
func newPolicy[K comparable, V any](cfg Config, capacity int, opt policy.Options[K, V]) (policy.Policy[K, V], error) {
	switch cfg.Strategy {
	case StrategyLRU:
		p, err := lru.New(capacity, opt)
		if err != nil {
			return nil, err
		}
		return p, nil
	case StrategyLFU:
		p, err := lfu.New(capacity, opt)
		if err != nil {
			return nil, err
		}
		return p, nil
	case StrategyTTL:
		p, err := ttl.New(capacity, cfg.TTL, opt)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, cfg.Strategy)
	}
}
