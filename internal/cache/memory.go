package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	storedAt time.Time
	ttl      time.Duration
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// MemoryStore is the in-process adapter used when Redis is unreachable and in
// tests. Expiry is lazy: an expired entry is evicted on the read that finds it.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string]memoryEntry
	counters *Counters
	now      func() time.Time
}

func NewMemoryStore(counters *Counters) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]memoryEntry),
		counters: counters,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		s.counters.Miss()
		return "", false
	}
	if e.expired(s.now()) {
		delete(s.data, key)
		s.counters.Miss()
		return "", false
	}
	s.counters.Hit()
	return e.value, true
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Whole-entry replace: storedAt always restarts with the new value.
	s.data[key] = memoryEntry{value: value, storedAt: s.now(), ttl: ttl}
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys, bytes int64
	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
			continue
		}
		keys++
		bytes += int64(len(k) + len(e.value))
	}
	return Stats{TotalKeys: keys, MemoryUsed: bytes, HitRate: s.counters.HitRate()}
}
