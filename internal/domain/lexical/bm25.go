// Package lexical provides an approximate BM25 relevance scorer for local
// re-scoring of retrieval candidates. Corpus statistics (document frequency,
// average length) are derived from the candidate set itself rather than a
// standing index.
package lexical

import (
	"math"
	"regexp"
	"strings"
)

// Standard BM25 parameters.
const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

var tokenRegex = regexp.MustCompile(`\w+`)

// Scorer computes BM25 scores over one candidate set.
type Scorer struct {
	k1 float64
	b  float64
}

// NewScorer creates a BM25 scorer with standard parameters.
func NewScorer() *Scorer {
	return &Scorer{k1: defaultK1, b: defaultB}
}

// ScoreAll scores every text against the query. The returned slice is aligned
// with texts. Scores are unnormalized; callers rank, they do not interpret
// magnitudes.
func (s *Scorer) ScoreAll(query string, texts []string) []float64 {
	if len(texts) == 0 {
		return nil
	}

	queryTerms := tokenize(query)
	scores := make([]float64, len(texts))
	if len(queryTerms) == 0 {
		return scores
	}

	docTerms := make([]map[string]int, len(texts))
	docLens := make([]int, len(texts))
	var totalLen int
	for i, text := range texts {
		tokens := tokenize(text)
		freq := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freq[t]++
		}
		docTerms[i] = freq
		docLens[i] = len(tokens)
		totalLen += len(tokens)
	}
	avgLen := float64(totalLen) / float64(len(texts))
	if avgLen == 0 {
		return scores
	}

	// Document frequency per query term, over the candidate set.
	df := make(map[string]int, len(queryTerms))
	for _, term := range queryTerms {
		for _, freq := range docTerms {
			if freq[term] > 0 {
				df[term]++
			}
		}
	}

	n := float64(len(texts))
	for i := range texts {
		var score float64
		for _, term := range queryTerms {
			tf := float64(docTerms[i][term])
			if tf == 0 {
				continue
			}
			idf := math.Log(1 + (n-float64(df[term])+0.5)/(float64(df[term])+0.5))
			norm := tf * (s.k1 + 1) / (tf + s.k1*(1-s.b+s.b*float64(docLens[i])/avgLen))
			score += idf * norm
		}
		scores[i] = score
	}
	return scores
}

func tokenize(text string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if len(t) >= 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
