package rerank

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// maxEmbedChars bounds the document text sent to the embedding model.
const maxEmbedChars = 2000

// dedicatedScorer scores pairs with a dedicated embedding model: the query is
// embedded once, each document is embedded as a "query: … document: …" pair,
// and cosine similarity is mapped from [-1, 1] to [0, 1]. Any embedding
// failure degrades to keyword scoring for that document only.
type dedicatedScorer struct {
	embed   Embedder
	keyword *keywordScorer
	logger  *zap.Logger
}

func newDedicatedScorer(embed Embedder, keyword *keywordScorer, logger *zap.Logger) *dedicatedScorer {
	return &dedicatedScorer{embed: embed, keyword: keyword, logger: logger}
}

// scoreAll returns scores aligned with docs. Never fails: a broken embedding
// path means keyword scores.
func (d *dedicatedScorer) scoreAll(ctx context.Context, query string, docs []domain.Document) []float64 {
	scores := make([]float64, len(docs))

	queryVec, err := d.embedText(ctx, query)
	if err != nil {
		d.logger.Warn("Query embedding unavailable, falling back to keyword scoring", zap.Error(err))
		metrics.RerankFallbacksTotal.WithLabelValues(string(ModeDedicated), "query_embed").Inc()
		for i, doc := range docs {
			scores[i] = d.keyword.score(query, doc)
		}
		return scores
	}

	for i, doc := range docs {
		content := doc.Content()
		if len(content) > maxEmbedChars {
			content = content[:maxEmbedChars]
		}
		pairVec, err := d.embedText(ctx, "query: "+query+" document: "+content)
		if err != nil || len(pairVec) != len(queryVec) {
			if err == nil {
				err = fmt.Errorf("%w: pair dim %d vs query dim %d",
					domain.ErrEmbeddingUnavailable, len(pairVec), len(queryVec))
			}
			d.logger.Warn("Pair embedding failed, keyword fallback for document",
				zap.String("source", doc.Source()), zap.Error(err))
			metrics.RerankFallbacksTotal.WithLabelValues(string(ModeDedicated), "pair_embed").Inc()
			scores[i] = d.keyword.score(query, doc)
			continue
		}
		scores[i] = (cosine(queryVec, pairVec) + 1) / 2
	}
	return scores
}

func (d *dedicatedScorer) embedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := d.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vec) == 0 {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return vec, nil
}

// cosine computes cosine similarity between two equal-length vectors.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
