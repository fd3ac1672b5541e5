package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	newsMaxResponseBytes = 1 << 20 // 1MB
	newsClientTimeout    = 10 * time.Second
	newsDefaultItems     = 3
)

// CryptoNewsFetcher pulls ticker-filtered articles from the crypto news API.
// It hands back the raw JSON body untouched so the normalizer can deal with
// the provider's shifting shapes.
type CryptoNewsFetcher struct {
	BaseURL string
	APIKey  string
	Items   int

	client *http.Client
}

func NewCryptoNewsFetcher(baseURL, apiKey string, items int) *CryptoNewsFetcher {
	if items <= 0 {
		items = newsDefaultItems
	}
	return &CryptoNewsFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Items:   items,
		client:  &http.Client{Timeout: newsClientTimeout},
	}
}

func (f *CryptoNewsFetcher) Name() string {
	return "cryptonews_api"
}

func (f *CryptoNewsFetcher) Fetch(ctx context.Context, coin string) ([]byte, error) {
	q := url.Values{}
	q.Set("tickers", strings.ToUpper(strings.TrimSpace(coin)))
	q.Set("items", strconv.Itoa(f.Items))
	q.Set("token", f.APIKey)
	reqURL := f.BaseURL + "?" + q.Encode()

	// Never log the token.
	log.Printf("cryptonews: requesting %s", strings.Replace(reqURL, f.APIKey, "[API_KEY]", 1))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptonews: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cryptonews: fetch %s: %w", coin, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cryptonews: unexpected status %d for %s", resp.StatusCode, coin)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, newsMaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("cryptonews: read body: %w", err)
	}
	return body, nil
}
