package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coinfeed/coinfeed/internal/cache"
	"github.com/coinfeed/coinfeed/internal/collector"
	"github.com/coinfeed/coinfeed/internal/hub"
	"github.com/coinfeed/coinfeed/internal/processor"
	"github.com/coinfeed/coinfeed/internal/rank"
	"github.com/coinfeed/coinfeed/internal/storage"
)

// PriceSource is the quote collaborator as the handlers see it.
type PriceSource interface {
	Fetch(ctx context.Context, symbol string) (string, error)
}

type Server struct {
	cache   cache.Store
	tracker rank.Tracker
	hub     *hub.Hub
	source  collector.NewsSource
	price   PriceSource
	proc    *processor.Processor
	store   *storage.Store // nil when the archive is disabled
	ttl     time.Duration
}

func NewServer(
	cacheStore cache.Store,
	tracker rank.Tracker,
	h *hub.Hub,
	source collector.NewsSource,
	price PriceSource,
	proc *processor.Processor,
	store *storage.Store,
	ttl time.Duration,
) *Server {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Server{
		cache:   cacheStore,
		tracker: tracker,
		hub:     h,
		source:  source,
		price:   price,
		proc:    proc,
		store:   store,
		ttl:     ttl,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/ws", s.handleWS)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/search", s.search)
		v1.GET("/price", s.priceQuote)
		v1.GET("/top-searches", s.topSearches)
		v1.GET("/cache/stats", s.cacheStats)
		v1.GET("/news/recent", s.recentNews)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) priceQuote(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "symbol is required"})
		return
	}

	quote, err := s.price.Fetch(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"code": "upstream_unavailable", "message": "no data available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "symbol": symbol, "price": quote})
}

func (s *Server) topSearches(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(rank.DefaultTopN)))
	if err != nil || n <= 0 {
		n = rank.DefaultTopN
	}

	// A ranker outage degrades to an empty board, never a 5xx.
	entries, err := s.tracker.TopN(c.Request.Context(), n)
	if err != nil {
		entries = nil
	}
	if entries == nil {
		entries = []rank.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "data": entries})
}

func (s *Server) cacheStats(c *gin.Context) {
	stats := s.cache.Stats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"code":        "ok",
		"data":        stats,
		"subscribers": s.hub.SubscriberCount(),
	})
}

func (s *Server) recentNews(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "archive_disabled", "message": "article archive not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	items, err := s.store.ListRecent(c.Query("coin"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "data": items})
}
