package processor

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/coinfeed/coinfeed/internal/news"
)

// maxSummaryRunes bounds the summary carried on a canonical item; longer
// upstream text is cut and marked with an ellipsis.
const maxSummaryRunes = 150

// Upstream shapes vary per provider. Each canonical field is resolved from an
// ordered candidate list, first non-empty wins; one table serves both the
// primary `data[]` records (source_name/date/text/news_url) and the alternate
// `news[]` records (source/published_at/description/url plus their fallbacks).
var fieldCandidates = map[string][]string{
	"title":     {"title"},
	"source":    {"source", "source_name"},
	"published": {"published_at", "date"},
	"text":      {"description", "text"},
	"url":       {"url", "news_url"},
}

// Layouts seen across the upstream news providers.
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Processor turns a raw upstream payload into canonical, scored news items.
// It is pure apart from diagnostic logging; transport failures never reach it.
type Processor struct {
	scorer *Scorer
	now    func() time.Time
}

func New(scorer *Scorer) *Processor {
	return &Processor{scorer: scorer, now: time.Now}
}

// Normalize parses raw and emits one Item per complete upstream record.
// The primary `data` array is tried first; only when it is absent does the
// alternate `news` array apply. Records missing any required field are
// dropped whole — no partial items. Malformed payloads yield an empty slice.
func (p *Processor) Normalize(raw []byte, coin string) []news.Item {
	var envelope struct {
		Message string           `json:"message"`
		Data    []map[string]any `json:"data"`
		News    []map[string]any `json:"news"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("processor: %s: unparseable payload: %v", coin, err)
		return nil
	}
	if envelope.Message != "" {
		log.Printf("processor: %s: upstream message: %s", coin, envelope.Message)
	}

	records := envelope.Data
	if records == nil {
		records = envelope.News
	}

	items := make([]news.Item, 0, len(records))
	for _, rec := range records {
		item, ok := p.normalizeRecord(rec)
		if !ok {
			log.Printf("processor: %s: dropping incomplete record", coin)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (p *Processor) normalizeRecord(rec map[string]any) (news.Item, bool) {
	fields := make(map[string]string, len(fieldCandidates))
	for target, candidates := range fieldCandidates {
		v, ok := resolveField(rec, candidates)
		if !ok {
			return news.Item{}, false
		}
		fields[target] = v
	}

	summary := truncateRunes(fields["text"], maxSummaryRunes)
	return news.Item{
		Title:       fields["title"],
		Source:      fields["source"],
		URL:         fields["url"],
		PublishedAt: p.parsePublished(fields["published"]),
		Summary:     summary,
		Sentiment:   p.scorer.ScoreItem(fields["title"], summary),
	}, true
}

// resolveField walks the candidate source fields in order and returns the
// first non-empty string value.
func resolveField(rec map[string]any, candidates []string) (string, bool) {
	for _, name := range candidates {
		if v, ok := rec[name].(string); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// parsePublished tries the known layouts; an unparseable timestamp falls back
// to now so the record is kept rather than dropped.
func (p *Processor) parsePublished(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return p.now()
}

// truncateRunes cuts by rune count so multi-byte text is never split
// mid-character, appending an ellipsis when anything was removed.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
