package retrieval

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Searcher retrieves broad candidates for a query in fused relevance order.
type Searcher interface {
	Candidates(
		ctx context.Context, tenant, query string, topK int, vectorWeight, bm25Weight float64,
	) ([]domain.Document, error)
}

// Store is the direct similarity-search path used when the iterative engine
// is disabled.
type Store interface {
	SimilaritySearch(
		ctx context.Context, query string, topK int, similarityThreshold float64, tenant string,
	) ([]domain.Document, error)
}

// Reranker scores candidates against a query. Never fails; may return fewer
// documents than it was given.
type Reranker interface {
	Rerank(ctx context.Context, tenant, query string, docs []domain.Document) []domain.ScoredDocument
}
