package fusion

import (
	"math"
	"strings"
	"testing"
)

func TestSuggestWeights_SumToOne(t *testing.T) {
	queries := []string{
		"revenue",
		`"exact phrase" ABC`,
		"What are the long-term implications of moving the billing pipeline to an event-driven architecture?",
		"the quarterly financial summary for engineering",
		"",
		strings.Repeat("long query ", 20),
	}
	for _, q := range queries {
		v, b := SuggestWeights(q)
		if math.Abs(v+b-1) > 1e-9 {
			t.Errorf("weights for %q sum to %f, want 1", q, v+b)
		}
		if v < 0 || b < 0 {
			t.Errorf("negative weight for %q: %f, %f", q, v, b)
		}
	}
}

func TestSuggestWeights_NeutralQueryKeepsDefaults(t *testing.T) {
	// No trigger: longer than 30 chars, no acronym, no quotes, not a question.
	v, b := SuggestWeights("the quarterly financial summary for engineering")

	if math.Abs(v-DefaultVectorWeight) > 1e-9 || math.Abs(b-DefaultBM25Weight) > 1e-9 {
		t.Errorf("expected default weights %f/%f, got %f/%f",
			DefaultVectorWeight, DefaultBM25Weight, v, b)
	}
}

func TestSuggestWeights_LexicalSignalsShiftTowardBM25(t *testing.T) {
	v, b := SuggestWeights(`"exact phrase" ABC`)

	if b <= v {
		t.Errorf("quoted phrase plus acronym should favor lexical: vector=%f bm25=%f", v, b)
	}
	if b <= DefaultBM25Weight {
		t.Errorf("bm25 weight should exceed default %f, got %f", DefaultBM25Weight, b)
	}
}

func TestSuggestWeights_QuestionShiftsTowardVector(t *testing.T) {
	long := "What are the long-term implications of moving the billing pipeline to an event-driven architecture?"
	v, _ := SuggestWeights(long)

	if v <= DefaultVectorWeight {
		t.Errorf("long question should favor vector beyond default %f, got %f", DefaultVectorWeight, v)
	}
}

func TestSuggestWeights_ShortQueryShiftsTowardBM25(t *testing.T) {
	_, bShort := SuggestWeights("deploy runbook")
	_, bNeutral := SuggestWeights("the quarterly financial summary for engineering")

	if bShort <= bNeutral {
		t.Errorf("short query should carry more lexical weight: %f <= %f", bShort, bNeutral)
	}
}

func TestSuggestWeightsFrom_RespectsBase(t *testing.T) {
	v, b := SuggestWeightsFrom("the quarterly financial summary for engineering", 0.5, 0.5)

	if math.Abs(v-0.5) > 1e-9 || math.Abs(b-0.5) > 1e-9 {
		t.Errorf("neutral query should keep base weights, got %f/%f", v, b)
	}
}

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"is this relevant?", true},
		{"what happened to the uplink", true},
		{"How do retries work", true},
		{"whatever you say", false},
		{"deploy runbook", false},
	}
	for _, tt := range tests {
		if got := isQuestion(tt.query); got != tt.want {
			t.Errorf("isQuestion(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
