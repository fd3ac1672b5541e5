package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	priceMaxResponseBytes = 256 * 1024
	priceClientTimeout    = 10 * time.Second
)

// PriceUnavailable is returned in place of a quote when the provider has no
// USD price for the symbol. The caller renders it as-is.
const PriceUnavailable = "Price data unavailable"

// PriceFetcher reads the latest USD quote for a symbol from the price API.
type PriceFetcher struct {
	BaseURL string
	APIKey  string

	client *http.Client
}

func NewPriceFetcher(baseURL, apiKey string) *PriceFetcher {
	return &PriceFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: priceClientTimeout},
	}
}

func (f *PriceFetcher) Name() string {
	return "price_api"
}

// Fetch returns a formatted quote such as "$64123.50".
func (f *PriceFetcher) Fetch(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", "USD")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("price: build request: %w", err)
	}
	req.Header.Set("X-CMC_PRO_API_KEY", f.APIKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("price: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("price: unexpected status %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, priceMaxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("price: read body: %w", err)
	}
	return parseUSDQuote(body, symbol), nil
}

// parseUSDQuote walks data.<SYMBOL>.quote.USD.price. Anything missing along
// the way degrades to the unavailable sentinel rather than an error: a
// well-formed response without our symbol is an answer, not a failure.
func parseUSDQuote(body []byte, symbol string) string {
	var envelope struct {
		Data map[string]struct {
			Quote map[string]struct {
				Price float64 `json:"price"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return PriceUnavailable
	}

	entry, ok := envelope.Data[symbol]
	if !ok {
		return PriceUnavailable
	}
	usd, ok := entry.Quote["USD"]
	if !ok || usd.Price == 0 {
		return PriceUnavailable
	}
	return fmt.Sprintf("$%.2f", usd.Price)
}
