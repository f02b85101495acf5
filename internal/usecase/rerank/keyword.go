package rerank

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/concept"
)

var wordSplitRegex = regexp.MustCompile(`\W+`)

// sourceBonus is added per query term that also appears in the document's
// source metadata, with the total score capped at 1.
const sourceBonus = 0.1

// keywordScorer is the universal fallback strategy: token overlap between
// query and document. Never fails, needs no external service.
type keywordScorer struct {
	extractor *concept.Extractor
}

func newKeywordScorer(extractor *concept.Extractor) *keywordScorer {
	return &keywordScorer{extractor: extractor}
}

// score computes matched-query-terms / considered-query-terms in [0, 1].
func (k *keywordScorer) score(query string, doc domain.Document) float64 {
	queryTerms := k.terms(query)
	if len(queryTerms) == 0 {
		return 0
	}

	docTerms := make(map[string]struct{})
	for _, t := range k.terms(doc.Content()) {
		docTerms[t] = struct{}{}
	}
	source := strings.ToLower(doc.Source())

	var matched int
	var bonus float64
	for _, term := range queryTerms {
		if _, ok := docTerms[term]; !ok {
			continue
		}
		matched++
		if source != "" && strings.Contains(source, term) {
			bonus += sourceBonus
		}
	}

	score := float64(matched)/float64(len(queryTerms)) + bonus
	if score > 1 {
		score = 1
	}
	return score
}

// terms tokenizes on non-word boundaries, dropping stop words and tokens
// of two characters or fewer.
func (k *keywordScorer) terms(text string) []string {
	var out []string
	for _, t := range wordSplitRegex.Split(strings.ToLower(text), -1) {
		if len(t) <= 2 {
			continue
		}
		if k.extractor.IsStopWord(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
