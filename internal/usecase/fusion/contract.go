package fusion

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Store retrieves vector-similarity candidates for a query.
type Store interface {
	SimilaritySearch(
		ctx context.Context, query string, topK int, similarityThreshold float64, tenant string,
	) ([]domain.Document, error)
}

// Lexical scores texts against a query for local BM25 ranking.
type Lexical interface {
	ScoreAll(query string, texts []string) []float64
}

// Result is one fused search hit. Ranks are 1-based; 0 means the document
// was absent from that list.
type Result struct {
	Document      domain.Document
	CombinedScore float64
	VectorRank    int
	BM25Rank      int
}
