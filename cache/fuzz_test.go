package cache

import (
	"strings"
	"testing"
)

// Fuzz Put/Get/Remove semantics under arbitrary string inputs for every
// strategy. Guards against panics and ensures core invariants hold.
func FuzzCache_PutGetRemove(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "", uint8(0))
	f.Add("a", "1", uint8(1))
	f.Add("αβγ", "δ", uint8(2))
	f.Add("emoji🙂", "🙂🙂", uint8(0))
	f.Add("long", strings.Repeat("x", 1024), uint8(1))

	strategies := []Config{
		{Strategy: StrategyLRU, Capacity: 4},
		{Strategy: StrategyLFU, Capacity: 4},
		{Strategy: StrategyTTL, Capacity: 4, TTL: 1 << 62},
	}

	f.Fuzz(func(t *testing.T, k, v string, which uint8) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c, err := New(strategies[int(which)%len(strategies)], Options[string, string]{})
		if err != nil {
			t.Fatal(err)
		}

		// Put -> Get must return the same value.
		c.Put(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Overwrite is idempotent on size.
		c.Put(k, v)
		if c.Len() != 1 {
			t.Fatalf("Len after overwrite = %d, want 1", c.Len())
		}

		// Fill past capacity with derived keys; size stays bounded.
		for i := range 10 {
			c.Put(k+strings.Repeat("#", i+1), v)
			if c.Len() > c.Cap() {
				t.Fatalf("Len %d > Cap %d", c.Len(), c.Cap())
			}
		}

		// Remove deletes at most once.
		first := c.Remove(k)
		if c.Remove(k) {
			t.Fatalf("second Remove returned true (first=%v)", first)
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Remove")
		}
	})
}
