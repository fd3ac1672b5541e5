package news

import "time"

// Item is the canonical news record, independent of which upstream shape it
// was parsed from. Treat values as immutable once built.
type Item struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Summary     string    `json:"summary"`
	// Sentiment is a lexicon score in [-1, 1]; 0 means neutral or no matches.
	Sentiment float64 `json:"sentiment"`
}

// Update is the transient payload fanned out to live subscribers. It is never
// persisted; a client that was not listening simply never sees it.
type Update struct {
	Coin  string `json:"coin"`
	Items []Item `json:"items"`
}
