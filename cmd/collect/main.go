package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/coinfeed/coinfeed/internal/collector"
	"github.com/coinfeed/coinfeed/internal/config"
	"github.com/coinfeed/coinfeed/internal/processor"
)

// One-shot fetch/normalize entry point: handy for checking provider
// credentials and the normalizer against live payloads without a server.
func main() {
	coin := flag.String("coin", "btc", "coin ticker to fetch news for")
	flag.Parse()

	cfg := config.Load()

	source := collector.NewCryptoNewsFetcher(cfg.NewsAPIURL, cfg.NewsAPIKey, cfg.NewsItems)
	proc := processor.New(processor.NewScorer())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	raw, err := source.Fetch(ctx, *coin)
	if err != nil {
		log.Fatalf("fetch %s failed: %v", *coin, err)
	}

	items := proc.Normalize(raw, *coin)
	log.Printf("normalized %d items for %s", len(items), *coin)

	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(out))
}
