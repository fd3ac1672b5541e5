package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// DefaultTTL is applied when a caller passes ttl <= 0 to Set.
const DefaultTTL = time.Hour

// ErrUnavailable reports a backing-store connectivity failure on Set. Get
// never returns it: a store that cannot answer is counted as a miss.
var ErrUnavailable = errors.New("cache: backing store unavailable")

// Store is the cache-aside contract. Get reports (value, found); found is
// false for absent, expired and unreachable alike.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Stats(ctx context.Context) Stats
}

type Stats struct {
	TotalKeys  int64   `json:"totalKeys"`
	MemoryUsed int64   `json:"memoryUsed"` // best effort, backend-reported bytes
	HitRate    float64 `json:"hitRate"`
}

// Counters holds the process-wide hit/miss tally shared by every lookup.
// It is injected into adapters rather than living as a package global.
type Counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCounters() *Counters { return &Counters{} }

func (c *Counters) Hit()  { c.hits.Add(1) }
func (c *Counters) Miss() { c.misses.Add(1) }

// HitRate returns hits/(hits+misses), or 0 before the first lookup.
func (c *Counters) HitRate() float64 {
	h := c.hits.Load()
	m := c.misses.Load()
	if h+m == 0 {
		return 0
	}
	return float64(h) / float64(h+m)
}
