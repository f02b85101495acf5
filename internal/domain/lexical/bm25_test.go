package lexical

import "testing"

func TestScoreAll_MatchingDocScoresHigher(t *testing.T) {
	s := NewScorer()

	texts := []string{
		"Revenue was $10M in 2024 driven by subscription growth",
		"The office cafeteria menu changes weekly",
	}
	scores := s.ScoreAll("annual revenue growth", texts)

	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0] <= scores[1] {
		t.Errorf("matching document should outscore unrelated one: %v", scores)
	}
}

func TestScoreAll_TermFrequencySaturates(t *testing.T) {
	s := NewScorer()

	texts := []string{
		"revenue revenue revenue revenue revenue revenue revenue revenue",
		"revenue report",
	}
	scores := s.ScoreAll("revenue", texts)

	// More occurrences score higher, but not proportionally (k1 saturation).
	if scores[0] <= scores[1] {
		t.Errorf("repeated term should score higher: %v", scores)
	}
	if scores[0] > 8*scores[1] {
		t.Errorf("term frequency should saturate, got %v", scores)
	}
}

func TestScoreAll_NoQueryTerms(t *testing.T) {
	s := NewScorer()

	scores := s.ScoreAll("", []string{"some document"})
	if scores[0] != 0 {
		t.Errorf("empty query should score 0, got %f", scores[0])
	}
}

func TestScoreAll_EmptyCorpus(t *testing.T) {
	s := NewScorer()

	if scores := s.ScoreAll("query", nil); scores != nil {
		t.Errorf("expected nil scores, got %v", scores)
	}
}

func TestScoreAll_NoMatchScoresZero(t *testing.T) {
	s := NewScorer()

	scores := s.ScoreAll("quantum entanglement", []string{"cafeteria menu"})
	if scores[0] != 0 {
		t.Errorf("unrelated document should score 0, got %f", scores[0])
	}
}
