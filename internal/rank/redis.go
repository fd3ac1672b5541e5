package rank

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const searchCountsKey = "search_counts"

// RedisTracker keeps the counters in one sorted set, so TopN is a range read
// and Increment is an atomic ZINCRBY — concurrent increments on the same term
// are serialized by Redis and never lost.
type RedisTracker struct {
	rdb *redis.Client
	key string
}

func NewRedisTracker(rdb *redis.Client) *RedisTracker {
	return &RedisTracker{rdb: rdb, key: searchCountsKey}
}

func (t *RedisTracker) Increment(ctx context.Context, term string) error {
	term = NormalizeTerm(term)
	if term == "" {
		return nil
	}
	if err := t.rdb.ZIncrBy(ctx, t.key, 1, term).Err(); err != nil {
		return fmt.Errorf("rank: zincrby %q: %w", term, err)
	}
	return nil
}

// TopN returns the n highest counters. Equal counts come back in ZREVRANGE's
// reverse-lexicographic member order, which is stable across calls.
func (t *RedisTracker) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	zs, err := t.rdb.ZRevRangeWithScores(ctx, t.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("rank: zrevrange: %w", err)
	}

	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		term, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Entry{Term: term, Count: uint64(z.Score)})
	}
	return out, nil
}
