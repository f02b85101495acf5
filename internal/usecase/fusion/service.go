// Package fusion merges vector-similarity and lexical candidate rankings
// into one list via weighted Reciprocal Rank Fusion.
package fusion

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Service runs hybrid search over a document store.
type Service struct {
	store   Store
	lexical Lexical
	logger  *zap.Logger
}

// New creates a fusion service.
func New(store Store, lexical Lexical, logger *zap.Logger) *Service {
	return &Service{store: store, lexical: lexical, logger: logger}
}

// Search retrieves topK*2 candidates per ranking, fuses them with RRF and
// returns the top K. Lexical candidates are drawn from the vector superset
// and re-scored locally; no separate lexical index exists. Weights need not
// sum to 1.
func (s *Service) Search(
	ctx context.Context, tenant, query string, topK int, vectorWeight, bm25Weight float64,
) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}

	candidates, err := s.store.SimilaritySearch(ctx, query, topK*2, 0, tenant)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vector := make([]rankedDoc, len(candidates))
	for i, doc := range candidates {
		vector[i] = rankedDoc{id: doc.Fingerprint(), rank: i + 1, doc: doc}
	}

	lexical := s.rankLexical(query, candidates, topK*2)

	results := fuseRRF(vector, lexical, vectorWeight, bm25Weight, topK)
	s.logger.Debug("Fused candidate rankings",
		zap.Int("vector", len(vector)),
		zap.Int("lexical", len(lexical)),
		zap.Int("fused", len(results)),
	)
	return results, nil
}

// Candidates runs Search and returns just the documents in fused order, for
// callers that re-score results themselves.
func (s *Service) Candidates(
	ctx context.Context, tenant, query string, topK int, vectorWeight, bm25Weight float64,
) ([]domain.Document, error) {
	results, err := s.Search(ctx, tenant, query, topK, vectorWeight, bm25Weight)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, len(results))
	for i, r := range results {
		docs[i] = r.Document
	}
	return docs, nil
}

// rankLexical re-scores the candidate superset with BM25 and returns the
// best limit documents as a 1-based ranking. Zero-score documents carry no
// lexical evidence and are left out.
func (s *Service) rankLexical(query string, candidates []domain.Document, limit int) []rankedDoc {
	texts := make([]string, len(candidates))
	for i, doc := range candidates {
		texts[i] = doc.Content()
	}
	scores := s.lexical.ScoreAll(query, texts)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for i, score := range scores {
		if score > 0 {
			ranked = append(ranked, scored{idx: i, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]rankedDoc, len(ranked))
	for rank, sc := range ranked {
		doc := candidates[sc.idx]
		out[rank] = rankedDoc{id: doc.Fingerprint(), rank: rank + 1, doc: doc}
	}
	return out
}
