// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/evictcache/cache"
	pmet "github.com/IvanBrykalov/evictcache/metrics/prom"
)

type flags struct {
	configPath string
	cfg        cache.Config

	workers  int
	duration time.Duration
	readPct  int
	opsRate  float64

	keys    int
	zipfS   float64
	zipfV   float64
	seed    int64
	preload int

	pprofAddr   string
	metricsAddr string
	logLevel    string
	logFormat   string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	def := cache.DefaultConfig()
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)

	fs.StringVar(&f.configPath, "config", "", "YAML cache config; explicit flags override it")
	strategy := fs.String("policy", string(def.Strategy), "eviction policy: lru | lfu | ttl")
	fs.IntVar(&f.cfg.Capacity, "cap", 100_000, "cache capacity (entries)")
	fs.IntVar(&f.cfg.Shards, "shards", def.Shards, "number of shards (1=single lock, -1=auto)")
	fs.DurationVar(&f.cfg.TTL, "ttl", def.TTL, "entry lifetime for -policy=ttl")
	fs.DurationVar(&f.cfg.SweepInterval, "sweep", def.SweepInterval, "background sweep interval (0=off)")

	fs.IntVar(&f.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	fs.DurationVar(&f.duration, "duration", 10*time.Second, "benchmark duration")
	fs.IntVar(&f.readPct, "reads", 80, "read percentage [0..100]")
	fs.Float64Var(&f.opsRate, "rate", 0, "cap total ops per second (0=unlimited)")

	fs.IntVar(&f.keys, "keys", 1_000_000, "keyspace size")
	fs.Float64Var(&f.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	fs.Float64Var(&f.zipfV, "zipf_v", 1.0, "Zipf v")
	fs.Int64Var(&f.seed, "seed", time.Now().UnixNano(), "random seed")
	fs.IntVar(&f.preload, "preload", 0, "preload entries (0 = cap/2)")

	fs.StringVar(&f.pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&f.metricsAddr, "http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug | info | warn | error")
	fs.StringVar(&f.logFormat, "log-format", "text", "text | json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.cfg.Strategy = cache.Strategy(*strategy)

	if f.configPath != "" {
		fromFile, err := cache.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		set := map[string]bool{}
		fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
		f.cfg = merge(fromFile, f.cfg, set)
	}

	if f.keys < 1 {
		return nil, fmt.Errorf("-keys must be >= 1, got %d", f.keys)
	}
	if f.readPct < 0 || f.readPct > 100 {
		return nil, fmt.Errorf("-reads must be in [0..100], got %d", f.readPct)
	}
	f.workers = max(f.workers, 1)
	return f, f.cfg.Validate()
}

// merge returns base with the fields whose flags were set taken from flagged.
func merge(base, flagged cache.Config, set map[string]bool) cache.Config {
	if set["policy"] {
		base.Strategy = flagged.Strategy
	}
	if set["cap"] {
		base.Capacity = flagged.Capacity
	}
	if set["shards"] {
		base.Shards = flagged.Shards
	}
	if set["ttl"] {
		base.TTL = flagged.TTL
	}
	if set["sweep"] {
		base.SweepInterval = flagged.SweepInterval
	}
	return base
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("-log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("-log-format: unknown format %q", format)
	}
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}
	logger, err := newLogger(f.logLevel, f.logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, logger); err != nil {
		logger.Error("bench failed", slog.Any("error", err))
		os.Exit(1)
	}
}

type counts struct {
	reads, writes, hits, misses, total atomic.Uint64
}

func run(ctx context.Context, f *flags, logger *slog.Logger) error {
	// ---- Prometheus metrics ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "evictcache", "bench", prometheus.Labels{"policy": string(f.cfg.Strategy)})

	// ---- Build cache ----
	c, err := cache.New(f.cfg, cache.Options[string, string]{
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	reg.MustRegister(pmet.NewStatsCollector(c, "evictcache", "bench", prometheus.Labels{"policy": string(f.cfg.Strategy)}))

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := f.preload
	if pl == 0 {
		pl = f.cfg.Capacity / 2
	}
	for i := range pl {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	var limiter *rate.Limiter
	if f.opsRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.opsRate), max(int(f.opsRate)/10, 1))
	}

	// Servers and the sweeper run until the workload is done; workers stop
	// at the deadline or on interrupt.
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	g, gctx := errgroup.WithContext(bgCtx)
	if f.pprofAddr != "" {
		g.Go(func() error { return serve(gctx, logger, "pprof", f.pprofAddr, http.DefaultServeMux) })
	}
	if f.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		g.Go(func() error { return serve(gctx, logger, "metrics", f.metricsAddr, mux) })
	}
	if f.cfg.SweepInterval > 0 {
		g.Go(func() error {
			err := cache.RunSweeper(gctx, c, f.cfg.SweepInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	// ---- Load generation ----
	var n counts
	wctx, cancel := context.WithTimeout(gctx, f.duration)
	defer cancel()

	logger.Info("bench started",
		slog.String("policy", string(f.cfg.Strategy)),
		slog.Int("cap", f.cfg.Capacity),
		slog.Int("shards", f.cfg.Shards),
		slog.Int("workers", f.workers),
		slog.Int64("seed", f.seed))

	start := time.Now()
	workers, wctx := errgroup.WithContext(wctx)
	for w := range f.workers {
		workers.Go(func() error { return work(wctx, c, f, limiter, &n, w) })
	}
	if err := workers.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	report(f, c, &n, elapsed)

	stopBackground()
	return g.Wait()
}

func work(ctx context.Context, c cache.Cache[string, string], f *flags, limiter *rate.Limiter, n *counts, id int) error {
	// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
	r := rand.New(rand.NewSource(f.seed + int64(id)*9973))
	zipf := rand.NewZipf(r, f.zipfS, f.zipfV, uint64(f.keys-1))
	key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n.total.Add(1)
		if int(r.Int31n(100)) < f.readPct {
			n.reads.Add(1)
			if _, ok := c.Get(key()); ok {
				n.hits.Add(1)
			} else {
				n.misses.Add(1)
			}
		} else {
			n.writes.Add(1)
			c.Put(key(), "v"+strconv.Itoa(r.Int()))
		}
	}
}

func serve(ctx context.Context, logger *slog.Logger, name, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("serving", slog.String("endpoint", name), slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func report(f *flags, c cache.Cache[string, string], n *counts, elapsed time.Duration) {
	ops := n.total.Load()
	reads := n.reads.Load()
	hits := n.hits.Load()

	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(hits) / float64(reads) * 100
	}
	s := c.Stats()

	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		f.cfg.Strategy, f.cfg.Capacity, s.Shards, f.workers, f.keys, elapsed, f.seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads, n.writes.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hits, n.misses.Load(), hitRate)
	fmt.Printf("Len()=%d evictions=%d expirations=%d\n", s.Entries, s.Evictions, s.Expirations)
}
