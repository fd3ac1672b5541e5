package processor

import (
	"sort"
	"strings"
)

// The two lexicons are the scorer's whole configuration. Weights are in (0,1]
// for positive terms and [-1,0) for negative ones. Matching is substring
// containment over the lower-cased input, so a term embedded in an unrelated
// word still counts — that is the reference behavior, keep it.
var positiveLexicon = map[string]float64{
	"bullish":     0.8,
	"surge":       0.7,
	"rally":       0.7,
	"soar":        0.8,
	"record high": 0.9,
	"breakout":    0.6,
	"adoption":    0.6,
	"approval":    0.6,
	"gain":        0.5,
	"growth":      0.5,
	"partnership": 0.4,
	"upgrade":     0.4,
	"milestone":   0.3,
}

var negativeLexicon = map[string]float64{
	"crash":    -0.9,
	"scam":     -0.9,
	"fraud":    -0.9,
	"hack":     -0.8,
	"bearish":  -0.8,
	"plunge":   -0.8,
	"dump":     -0.7,
	"selloff":  -0.7,
	"collapse": -0.7,
	"ban":      -0.6,
	"lawsuit":  -0.5,
	"fear":     -0.5,
	"decline":  -0.4,
	"warning":  -0.3,
}

type weightedTerm struct {
	term   string
	weight float64
}

// Scorer estimates sentiment from fixed weighted lexicons. The terms are held
// in sorted order so float accumulation is identical on every call — the same
// text always produces the same score.
type Scorer struct {
	terms []weightedTerm
}

func NewScorer() *Scorer {
	terms := make([]weightedTerm, 0, len(positiveLexicon)+len(negativeLexicon))
	for term, weight := range positiveLexicon {
		terms = append(terms, weightedTerm{term: term, weight: weight})
	}
	for term, weight := range negativeLexicon {
		terms = append(terms, weightedTerm{term: term, weight: weight})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].term < terms[j].term })
	return &Scorer{terms: terms}
}

// Score returns the mean weight of the matched lexicon terms, clamped to
// [-1, 1]. A term contributes at most once per call no matter how often it
// occurs. No matches means 0.
func (s *Scorer) Score(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	var sum float64
	var matches int
	for _, wt := range s.terms {
		if strings.Contains(lower, wt.term) {
			sum += wt.weight
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	return clamp(sum/float64(matches), -1, 1)
}

// ScoreItem is the per-article sentiment: title and summary are scored
// separately and averaged.
func (s *Scorer) ScoreItem(title, summary string) float64 {
	return (s.Score(title) + s.Score(summary)) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
