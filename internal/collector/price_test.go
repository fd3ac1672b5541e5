package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseUSDQuote(t *testing.T) {
	body := []byte(`{"data":{"BTC":{"quote":{"USD":{"price":64123.499}}}}}`)
	if got := parseUSDQuote(body, "BTC"); got != "$64123.50" {
		t.Fatalf("parseUSDQuote = %q, want $64123.50", got)
	}
}

func TestParseUSDQuoteMissingPathsFallBack(t *testing.T) {
	cases := []string{
		`not json`,
		`{}`,
		`{"data":{}}`,
		`{"data":{"ETH":{"quote":{"USD":{"price":1.0}}}}}`, // wrong symbol
		`{"data":{"BTC":{"quote":{}}}}`,
		`{"data":{"BTC":{"quote":{"USD":{"price":0}}}}}`,
	}
	for _, raw := range cases {
		if got := parseUSDQuote([]byte(raw), "BTC"); got != PriceUnavailable {
			t.Fatalf("parseUSDQuote(%q) = %q, want unavailable sentinel", raw, got)
		}
	}
}

func TestPriceFetcherUppercasesSymbolAndSendsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTC" {
			t.Errorf("symbol query = %q, want BTC", got)
		}
		if got := r.Header.Get("X-CMC_PRO_API_KEY"); got != "secret" {
			t.Errorf("api key header = %q, want secret", got)
		}
		_, _ = w.Write([]byte(`{"data":{"BTC":{"quote":{"USD":{"price":100}}}}}`))
	}))
	defer srv.Close()

	f := NewPriceFetcher(srv.URL, "secret")
	got, err := f.Fetch(context.Background(), " btc ")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != "$100.00" {
		t.Fatalf("Fetch = %q, want $100.00", got)
	}
}

func TestPriceFetcherSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewPriceFetcher(srv.URL, "k")
	if _, err := f.Fetch(context.Background(), "btc"); err == nil {
		t.Fatalf("Fetch should fail on non-200 status")
	}
}

func TestCryptoNewsFetcherReturnsRawBody(t *testing.T) {
	payload := `{"data":[{"title":"x"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tickers"); got != "BTC" {
			t.Errorf("tickers query = %q, want BTC", got)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token query = %q, want tok", got)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewCryptoNewsFetcher(srv.URL, "tok", 3)
	body, err := f.Fetch(context.Background(), "btc")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(body) != payload {
		t.Fatalf("Fetch body = %q, want raw payload untouched", body)
	}
}
