package cache

import (
	"context"
	"fmt"
	"time"
)

// Sweeper is anything with expired entries to erase; every Cache is one.
type Sweeper interface {
	Sweep() int
}

// RunSweeper calls s.Sweep every interval until ctx is done, then returns
// ctx.Err(). It blocks; run it in its own goroutine (or errgroup).
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: sweep interval must be > 0, got %v", ErrInvalidConfig, interval)
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Sweep()
		}
	}
}
