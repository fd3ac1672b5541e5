package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coinfeed/coinfeed/internal/cache"
	"github.com/coinfeed/coinfeed/internal/collector"
	"github.com/coinfeed/coinfeed/internal/hub"
	"github.com/coinfeed/coinfeed/internal/news"
	"github.com/coinfeed/coinfeed/internal/processor"
	"github.com/coinfeed/coinfeed/internal/rank"
	"github.com/coinfeed/coinfeed/internal/storage"
)

const refreshTimeout = 30 * time.Second

// Scheduler is the producer side of the live feed: on every cron tick it
// refreshes the most-searched coins, pushes the fresh items to the hub, and
// rewrites their cache entries so the next search is a hit.
type Scheduler struct {
	cron    *cron.Cron
	tracker rank.Tracker
	source  collector.NewsSource
	headlines *collector.HeadlineFetcher
	proc    *processor.Processor
	cache   cache.Store
	hub     *hub.Hub
	store   *storage.Store // nil disables archiving
	ttl     time.Duration
}

func New(
	spec string,
	tracker rank.Tracker,
	source collector.NewsSource,
	headlines *collector.HeadlineFetcher,
	proc *processor.Processor,
	cacheStore cache.Store,
	h *hub.Hub,
	store *storage.Store,
	ttl time.Duration,
) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{
		cron:    c,
		tracker: tracker,
		source:  source,
		headlines: headlines,
		proc:    proc,
		cache:   cacheStore,
		hub:     h,
		store:   store,
		ttl:     ttl,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// Delay the first round so it does not race the first page load.
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce exposes a single refresh round for manual triggering.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start refresh job...")

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	coins, err := s.tracker.TopN(ctx, rank.DefaultTopN)
	if err != nil {
		log.Printf("refresh: top searches: %v", err)
		coins = nil
	}

	var wg sync.WaitGroup
	for _, entry := range coins {
		coin := entry.Term
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.refreshCoin(ctx, coin)
		}()
	}

	if s.headlines != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.archiveHeadlines()
		}()
	}

	wg.Wait()
	log.Println("refresh job done")
}

func (s *Scheduler) refreshCoin(ctx context.Context, coin string) {
	raw, err := s.source.Fetch(ctx, coin)
	if err != nil {
		log.Printf("refresh %s: fetch: %v", coin, err)
		return
	}
	items := s.proc.Normalize(raw, coin)
	if len(items) == 0 {
		log.Printf("refresh %s: no items", coin)
		return
	}

	// Live subscribers first, then the cache write-back and the archive.
	s.hub.Publish(news.Update{Coin: coin, Items: items})

	if payload, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, "news:"+coin, string(payload), s.ttl); err != nil {
			log.Printf("refresh %s: cache set: %v", coin, err)
		}
	}
	if s.store != nil {
		if err := s.store.SaveBatch(coin, s.source.Name(), items); err != nil {
			log.Printf("refresh %s: archive: %v", coin, err)
		}
	}
	log.Printf("refresh %s done, %d items", coin, len(items))
}

func (s *Scheduler) archiveHeadlines() {
	items, err := s.headlines.Fetch()
	if err != nil {
		log.Printf("refresh headlines: %v", err)
		return
	}
	if len(items) == 0 || s.store == nil {
		return
	}
	if err := s.store.SaveBatch("", s.headlines.Name(), items); err != nil {
		log.Printf("refresh headlines: archive: %v", err)
		return
	}
	log.Printf("refresh headlines done, %d items", len(items))
}
