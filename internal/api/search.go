package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinfeed/coinfeed/internal/news"
	"github.com/coinfeed/coinfeed/internal/rank"
)

const cacheKeyPrefix = "news:"

func (s *Server) search(c *gin.Context) {
	term := rank.NormalizeTerm(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "q is required"})
		return
	}

	ctx := c.Request.Context()
	items, cached, err := s.lookupNews(ctx, term)

	// Every search counts toward popularity, hit or miss. A ranker outage is
	// absorbed here: the search result does not depend on it.
	if incErr := s.tracker.Increment(ctx, term); incErr != nil {
		log.Printf("api: increment %q: %v", term, incErr)
	}

	if err != nil {
		// Cache missed and the upstream gave nothing: the one case that
		// surfaces to the caller.
		c.JSON(http.StatusBadGateway, gin.H{"code": "upstream_unavailable", "message": "no data available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "ok", "coin": term, "cached": cached, "data": items})
}

// lookupNews is the cache-aside read path: cache first, then upstream fetch,
// normalize, score, write back. Reports whether the cache answered.
func (s *Server) lookupNews(ctx context.Context, term string) ([]news.Item, bool, error) {
	key := cacheKeyPrefix + term

	if raw, ok := s.cache.Get(ctx, key); ok {
		var items []news.Item
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, true, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		log.Printf("api: corrupt cache entry %q, refetching", key)
	}

	items, err := s.fetchAndStore(ctx, term)
	if err != nil {
		return nil, false, err
	}
	return items, false, nil
}

// fetchAndStore runs the producer side: upstream fetch, normalize, cache
// write-back, archive. Cache and archive failures are absorbed — the caller
// still gets the items.
func (s *Server) fetchAndStore(ctx context.Context, term string) ([]news.Item, error) {
	raw, err := s.source.Fetch(ctx, term)
	if err != nil {
		return nil, err
	}
	items := s.proc.Normalize(raw, term)

	if payload, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, cacheKeyPrefix+term, string(payload), s.ttl); err != nil {
			log.Printf("api: cache set %q: %v", term, err)
		}
	}

	if s.store != nil && len(items) > 0 {
		if err := s.store.SaveBatch(term, s.source.Name(), items); err != nil {
			log.Printf("api: archive %q: %v", term, err)
		}
	}
	return items, nil
}
