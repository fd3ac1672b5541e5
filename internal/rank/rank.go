package rank

import (
	"context"
	"strings"
)

// DefaultTopN matches the homepage "top searches" widget.
const DefaultTopN = 5

// Entry is one (term, count) pair from TopN, highest count first.
type Entry struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
}

// Tracker counts search terms and serves the most popular ones without a
// full scan. Increment must never lose updates under concurrent callers.
type Tracker interface {
	Increment(ctx context.Context, term string) error
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// NormalizeTerm folds a raw query into its counter key: trimmed, lower-cased.
// "BTC", " btc " and "btc" are the same term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
