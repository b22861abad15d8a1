package cache

// Stats is a point-in-time snapshot of cache counters. Counters are read
// one by one without a global lock, so a snapshot taken under load may mix
// values from slightly different instants.
type Stats struct {
	Strategy Strategy `json:"strategy"`

	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`

	// Evictions counts every eviction; Expirations is the TTL subset.
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`

	Loads      uint64 `json:"loads"`
	LoadErrors uint64 `json:"load_errors"`

	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
	Shards   int `json:"shards"`
}

// HitRatio returns hits / (hits + misses) in [0, 1]; 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRatio returns 1 - HitRatio once there has been a lookup.
func (s Stats) MissRatio() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return 1 - s.HitRatio()
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Loads:       c.loads.Load(),
		LoadErrors:  c.loadErrors.Load(),
	}
}
