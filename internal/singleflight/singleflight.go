// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrLoaderPanicked is returned to followers whose leader's fn panicked.
	// The leader itself re-panics with the original value.
	ErrLoaderPanicked = errors.New("singleflight: loader panicked")

	// ErrLoaderExited is returned to followers whose leader's fn called
	// runtime.Goexit. The leader's goroutine keeps exiting.
	ErrLoaderExited = errors.New("singleflight: loader goroutine exited")
)

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once per flight. Other concurrent
// callers wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower. The
//     leader's fn receives the leader's ctx.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
	dups int
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result. shared reports whether the result was
// delivered to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func(context.Context) (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(ctx, key, c, fn)

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()
	return c.val, shared, c.err
}

// run executes fn outside the lock and always publishes a result, even
// when fn panics or calls runtime.Goexit, so that followers never block
// forever.
func (g *Group[K, V]) run(ctx context.Context, key K, c *call[V], fn func(context.Context) (V, error)) {
	normal := false
	defer func() {
		if normal {
			g.finish(key, c)
			return
		}
		// recover returns nil only during runtime.Goexit; panic(nil) arrives
		// as *runtime.PanicNilError.
		r := recover()
		if r == nil {
			c.err = ErrLoaderExited
			g.finish(key, c)
			return
		}
		c.err = fmt.Errorf("%w: %v", ErrLoaderPanicked, r)
		g.finish(key, c)
		panic(r)
	}()

	c.val, c.err = fn(ctx)
	normal = true
}

func (g *Group[K, V]) finish(key K, c *call[V]) {
	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
	close(c.done)
}

// Forget drops the in-flight marker for key. The running fn is not
// interrupted; the next Do for key starts a new flight.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
