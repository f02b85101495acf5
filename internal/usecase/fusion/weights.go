package fusion

import (
	"regexp"
	"strings"
)

// Default fusion weights.
const (
	DefaultVectorWeight = 0.6
	DefaultBM25Weight   = 0.4
)

var (
	acronymRegex = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	quotedRegex  = regexp.MustCompile(`"[^"]+"|'[^']+'`)
)

var whWords = []string{"what", "who", "where", "when", "why", "which", "how"}

// SuggestWeights derives fusion weights from the query shape. Short queries,
// acronyms and quoted phrases shift weight toward lexical matching; long or
// question-form queries shift toward vector similarity. Triggers stack
// additively, then the pair is renormalized to sum to 1.
func SuggestWeights(query string) (vectorWeight, bm25Weight float64) {
	return SuggestWeightsFrom(query, DefaultVectorWeight, DefaultBM25Weight)
}

// SuggestWeightsFrom applies the same shifts starting from caller-supplied
// base weights.
func SuggestWeightsFrom(query string, baseVector, baseBM25 float64) (vectorWeight, bm25Weight float64) {
	vectorWeight = baseVector
	bm25Weight = baseBM25

	trimmed := strings.TrimSpace(query)

	if len(trimmed) < 30 {
		bm25Weight += 0.1
	}
	if acronymRegex.MatchString(trimmed) {
		bm25Weight += 0.15
	}
	if quotedRegex.MatchString(trimmed) {
		bm25Weight += 0.2
	}
	if len(trimmed) > 100 || isQuestion(trimmed) {
		vectorWeight += 0.1
	}

	sum := vectorWeight + bm25Weight
	return vectorWeight / sum, bm25Weight / sum
}

func isQuestion(query string) bool {
	if strings.Contains(query, "?") {
		return true
	}
	lower := strings.ToLower(query)
	for _, w := range whWords {
		if strings.HasPrefix(lower, w+" ") {
			return true
		}
	}
	return false
}
