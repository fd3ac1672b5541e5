package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis with SET EX expiry, so expired keys
// never come back from Get. Hit/miss accounting lives in the shared Counters,
// not in Redis.
type RedisStore struct {
	rdb      *redis.Client
	counters *Counters
}

func NewRedisStore(rdb *redis.Client, counters *Counters) *RedisStore {
	return &RedisStore{rdb: rdb, counters: counters}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			// Connectivity failure is a miss, not an error the caller sees.
			log.Printf("cache: redis get %q: %v", key, err)
		}
		s.counters.Miss()
		return "", false
	}
	s.counters.Hit()
	return v, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *RedisStore) Stats(ctx context.Context) Stats {
	st := Stats{HitRate: s.counters.HitRate()}

	if n, err := s.rdb.DBSize(ctx).Result(); err == nil {
		st.TotalKeys = n
	}
	if info, err := s.rdb.Info(ctx, "memory").Result(); err == nil {
		st.MemoryUsed = parseUsedMemory(info)
	}
	return st
}

// parseUsedMemory pulls used_memory out of an INFO memory block.
func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "used_memory:"); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}
