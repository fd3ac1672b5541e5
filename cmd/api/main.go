package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/coinfeed/coinfeed/internal/api"
	"github.com/coinfeed/coinfeed/internal/cache"
	"github.com/coinfeed/coinfeed/internal/collector"
	"github.com/coinfeed/coinfeed/internal/config"
	"github.com/coinfeed/coinfeed/internal/hub"
	"github.com/coinfeed/coinfeed/internal/processor"
	"github.com/coinfeed/coinfeed/internal/rank"
	"github.com/coinfeed/coinfeed/internal/scheduler"
	"github.com/coinfeed/coinfeed/internal/storage"
)

func main() {
	cfg := config.Load()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	counters := cache.NewCounters()

	// Redis backs both the cache and the popularity ranking; when it is down
	// at startup, degrade to the in-process adapters instead of refusing to
	// serve (entries then live only as long as the process).
	var cacheStore cache.Store
	var tracker rank.Tracker
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	pingErr := rdb.Ping(ctx).Err()
	cancel()
	if pingErr != nil {
		log.Printf("warn: redis ping failed, using in-memory cache and ranking: %v", pingErr)
		cacheStore = cache.NewMemoryStore(counters)
		tracker = rank.NewMemoryTracker()
	} else {
		cacheStore = cache.NewRedisStore(rdb, counters)
		tracker = rank.NewRedisTracker(rdb)
	}

	var store *storage.Store
	if cfg.PostgresDSN != "" {
		var err error
		store, err = storage.NewStore(cfg.PostgresDSN, rdb)
		if err != nil {
			log.Fatalf("init archive failed: %v", err)
		}
	} else {
		log.Println("archive disabled: POSTGRES_DSN not set")
	}

	scorer := processor.NewScorer()
	proc := processor.New(scorer)
	source := collector.NewCryptoNewsFetcher(cfg.NewsAPIURL, cfg.NewsAPIKey, cfg.NewsItems)
	price := collector.NewPriceFetcher(cfg.PriceAPIURL, cfg.PriceAPIKey)

	var headlines *collector.HeadlineFetcher
	if cfg.HeadlineURL != "" {
		headlines = collector.NewHeadlineFetcher(cfg.HeadlineURL, scorer)
	}

	h := hub.New()
	defer h.Close()

	sched, err := scheduler.New(cfg.CronSpec, tracker, source, headlines, proc, cacheStore, h, store, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	r := gin.Default()
	apiServer := api.NewServer(cacheStore, tracker, h, source, price, proc, store, cfg.CacheTTL)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
