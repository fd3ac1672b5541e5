package processor

import (
	"strings"
	"testing"
)

func TestScoreEmptyTextIsZero(t *testing.T) {
	s := NewScorer()
	if got := s.Score(""); got != 0 {
		t.Fatalf("Score(\"\") = %v, want 0", got)
	}
	if got := s.Score("the quick brown fox"); got != 0 {
		t.Fatalf("Score with no lexicon matches = %v, want 0", got)
	}
}

func TestScoreBullishIsPositive(t *testing.T) {
	s := NewScorer()
	if got := s.Score("bullish"); got <= 0 {
		t.Fatalf("Score(\"bullish\") = %v, want > 0", got)
	}
}

func TestScoreCrashIsNegative(t *testing.T) {
	s := NewScorer()
	if got := s.Score("crash"); got >= 0 {
		t.Fatalf("Score(\"crash\") = %v, want < 0", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer()
	text := "Bitcoin rally continues despite hack fears, bullish analysts see growth"
	first := s.Score(text)
	for i := 0; i < 20; i++ {
		if got := s.Score(text); got != first {
			t.Fatalf("Score not deterministic: %v vs %v on call %d", first, got, i)
		}
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer()
	if s.Score("BULLISH SURGE") != s.Score("bullish surge") {
		t.Fatalf("scoring should lower-case the input")
	}
}

func TestScoreTermCountsOncePerCall(t *testing.T) {
	s := NewScorer()
	once := s.Score("crash")
	thrice := s.Score("crash crash crash")
	if once != thrice {
		t.Fatalf("repeated occurrences should not change the score: %v vs %v", once, thrice)
	}
}

func TestScoreStaysWithinBounds(t *testing.T) {
	s := NewScorer()
	pos := strings.Join([]string{"bullish", "surge", "rally", "soar", "record high", "breakout"}, " ")
	if got := s.Score(pos); got < -1 || got > 1 {
		t.Fatalf("Score = %v, want within [-1, 1]", got)
	}
	neg := strings.Join([]string{"crash", "scam", "fraud", "hack", "bearish", "plunge"}, " ")
	if got := s.Score(neg); got < -1 || got > 1 {
		t.Fatalf("Score = %v, want within [-1, 1]", got)
	}
}

func TestScoreSubstringMatchingIsPreserved(t *testing.T) {
	// "gain" inside "bargaining" still matches: the reference scorer works on
	// substring containment and we keep that behavior.
	s := NewScorer()
	if got := s.Score("union bargaining session"); got <= 0 {
		t.Fatalf("embedded lexicon term should match, got %v", got)
	}
}

func TestScoreItemAveragesTitleAndSummary(t *testing.T) {
	s := NewScorer()
	title := "bullish"
	summary := "no relevant words here"

	want := (s.Score(title) + s.Score(summary)) / 2
	if got := s.ScoreItem(title, summary); got != want {
		t.Fatalf("ScoreItem = %v, want %v", got, want)
	}
	if got := s.ScoreItem("", ""); got != 0 {
		t.Fatalf("ScoreItem on empty input = %v, want 0", got)
	}
}
