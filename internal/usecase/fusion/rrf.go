package fusion

import (
	"sort"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// rankedDoc carries a document with its 1-based rank in one candidate list.
type rankedDoc struct {
	id   string
	rank int
	doc  domain.Document
}

// fuseRRF merges a vector-ranked and a lexically-ranked candidate list.
// score(d) = vectorWeight/(k + vectorRank) + bm25Weight/(k + bm25Rank);
// a list that lacks the document contributes nothing (infinite rank).
func fuseRRF(vector, lexical []rankedDoc, vectorWeight, bm25Weight float64, topK int) []Result {
	merged := make(map[string]*Result)
	var order []string

	for _, rd := range vector {
		merged[rd.id] = &Result{Document: rd.doc, VectorRank: rd.rank}
		order = append(order, rd.id)
	}
	for _, rd := range lexical {
		if existing, ok := merged[rd.id]; ok {
			existing.BM25Rank = rd.rank
			continue
		}
		merged[rd.id] = &Result{Document: rd.doc, BM25Rank: rd.rank}
		order = append(order, rd.id)
	}

	results := make([]Result, 0, len(merged))
	for _, id := range order {
		r := merged[id]
		if r.VectorRank > 0 {
			r.CombinedScore += vectorWeight / float64(rrfK+r.VectorRank)
		}
		if r.BM25Rank > 0 {
			r.CombinedScore += bm25Weight / float64(rrfK+r.BM25Rank)
		}
		results = append(results, *r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
