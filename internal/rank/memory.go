package rank

import (
	"context"
	"sort"
	"sync"
)

// MemoryTracker is the in-process fallback and test double. A single mutex
// serializes increments, so the no-lost-updates property holds here too.
type MemoryTracker struct {
	mu     sync.RWMutex
	counts map[string]uint64
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{counts: make(map[string]uint64)}
}

func (t *MemoryTracker) Increment(_ context.Context, term string) error {
	term = NormalizeTerm(term)
	if term == "" {
		return nil
	}
	t.mu.Lock()
	t.counts[term]++
	t.mu.Unlock()
	return nil
}

// TopN sorts by count descending, ties lexicographically ascending, so the
// output is reproducible across calls with no increments in between.
func (t *MemoryTracker) TopN(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultTopN
	}

	t.mu.RLock()
	entries := make([]Entry, 0, len(t.counts))
	for term, count := range t.counts {
		entries = append(entries, Entry{Term: term, Count: count})
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Term < entries[j].Term
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
