package processor

import (
	"strings"
	"testing"
	"time"
)

func newTestProcessor() *Processor {
	p := New(NewScorer())
	p.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestNormalizePrimaryShape(t *testing.T) {
	p := newTestProcessor()
	raw := []byte(`{"data":[{
		"title":"Bitcoin breaks out",
		"source_name":"CoinWire",
		"date":"2024-01-02T10:30:00Z",
		"text":"A bullish breakout above resistance",
		"news_url":"https://example.com/btc-breakout"
	}]}`)

	items := p.Normalize(raw, "btc")
	if len(items) != 1 {
		t.Fatalf("Normalize returned %d items, want 1", len(items))
	}
	it := items[0]
	if it.Title != "Bitcoin breaks out" || it.Source != "CoinWire" || it.URL != "https://example.com/btc-breakout" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if !it.PublishedAt.Equal(time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("PublishedAt = %v, want parsed RFC3339 value", it.PublishedAt)
	}
	if it.Sentiment <= 0 {
		t.Fatalf("Sentiment = %v, want > 0 for bullish text", it.Sentiment)
	}
}

func TestNormalizeFallsThroughToAlternateShape(t *testing.T) {
	p := newTestProcessor()
	raw := []byte(`{"news":[{
		"title":"X",
		"source":"Y",
		"published_at":"2024-01-01T00:00:00Z",
		"description":"bullish surge",
		"url":"http://a"
	}]}`)

	items := p.Normalize(raw, "BTC")
	if len(items) != 1 {
		t.Fatalf("Normalize returned %d items, want 1", len(items))
	}
	if items[0].Sentiment <= 0 {
		t.Fatalf("Sentiment = %v, want > 0", items[0].Sentiment)
	}
	if items[0].Summary != "bullish surge" {
		t.Fatalf("Summary = %q, want untruncated source text", items[0].Summary)
	}
}

func TestNormalizeAlternateShapeFieldFallbacks(t *testing.T) {
	// Alternate records may use the primary field names too; the candidate
	// lists must pick them up.
	p := newTestProcessor()
	raw := []byte(`{"news":[{
		"title":"T",
		"source_name":"S",
		"date":"2024-01-01T00:00:00Z",
		"text":"body",
		"news_url":"http://b"
	}]}`)

	items := p.Normalize(raw, "eth")
	if len(items) != 1 {
		t.Fatalf("Normalize returned %d items, want 1", len(items))
	}
	if items[0].Source != "S" || items[0].URL != "http://b" || items[0].Summary != "body" {
		t.Fatalf("fallback resolution failed: %+v", items[0])
	}
}

func TestNormalizePrimaryArrayWinsOverAlternate(t *testing.T) {
	p := newTestProcessor()
	raw := []byte(`{
		"data":[{"title":"primary","source_name":"S","date":"2024-01-01T00:00:00Z","text":"x","news_url":"http://p"}],
		"news":[{"title":"alternate","source":"S","published_at":"2024-01-01T00:00:00Z","description":"y","url":"http://a"}]
	}`)

	items := p.Normalize(raw, "btc")
	if len(items) != 1 || items[0].Title != "primary" {
		t.Fatalf("primary shape should win: %+v", items)
	}
}

func TestNormalizeDropsRecordMissingURL(t *testing.T) {
	p := newTestProcessor()
	raw := []byte(`{"news":[
		{"title":"keep","source":"S","published_at":"2024-01-01T00:00:00Z","description":"d","url":"http://ok"},
		{"title":"drop","source":"S","published_at":"2024-01-01T00:00:00Z","description":"d"}
	]}`)

	items := p.Normalize(raw, "btc")
	if len(items) != 1 {
		t.Fatalf("Normalize returned %d items, want 1 (record without url dropped)", len(items))
	}
	if items[0].Title != "keep" {
		t.Fatalf("wrong record survived: %+v", items[0])
	}
}

func TestNormalizeUnparseableDateSubstitutesNow(t *testing.T) {
	p := newTestProcessor()
	raw := []byte(`{"data":[{
		"title":"T","source_name":"S","date":"sometime last tuesday","text":"x","news_url":"http://c"
	}]}`)

	items := p.Normalize(raw, "btc")
	if len(items) != 1 {
		t.Fatalf("record with bad date must be kept, got %d items", len(items))
	}
	if !items[0].PublishedAt.Equal(p.now()) {
		t.Fatalf("PublishedAt = %v, want the injected now", items[0].PublishedAt)
	}
}

func TestNormalizeTruncatesLongSummary(t *testing.T) {
	p := newTestProcessor()
	long := strings.Repeat("a", 200)
	raw := []byte(`{"data":[{"title":"T","source_name":"S","date":"2024-01-01T00:00:00Z","text":"` + long + `","news_url":"http://d"}]}`)

	items := p.Normalize(raw, "btc")
	if len(items) != 1 {
		t.Fatalf("Normalize returned %d items, want 1", len(items))
	}
	got := []rune(items[0].Summary)
	if len(got) != maxSummaryRunes+1 {
		t.Fatalf("summary rune length = %d, want %d plus ellipsis", len(got), maxSummaryRunes+1)
	}
	if got[len(got)-1] != '…' {
		t.Fatalf("truncated summary should end with ellipsis: %q", items[0].Summary)
	}
}

func TestNormalizeMalformedPayloadYieldsNothing(t *testing.T) {
	p := newTestProcessor()
	if items := p.Normalize([]byte("not json at all"), "btc"); len(items) != 0 {
		t.Fatalf("malformed payload: got %d items, want 0", len(items))
	}
	if items := p.Normalize([]byte(`{"message":"rate limited"}`), "btc"); len(items) != 0 {
		t.Fatalf("payload without arrays: got %d items, want 0", len(items))
	}
}

func TestTruncateRunesKeepsShortText(t *testing.T) {
	if got := truncateRunes("short", 150); got != "short" {
		t.Fatalf("truncateRunes = %q, want unchanged", got)
	}
	if got := truncateRunes("héllo wörld", 5); got != "héllo…" {
		t.Fatalf("truncateRunes = %q, want %q", got, "héllo…")
	}
}
