package domain

import "context"

// DocumentStore is the vector-search contract the engine retrieves candidates from.
// Implementations embed the query themselves; the engine never sees raw vectors.
type DocumentStore interface {
	SimilaritySearch(
		ctx context.Context, query string, topK int, similarityThreshold float64, tenant string,
	) ([]Document, error)
}

// Embedder vectorizes text. An empty vector or an error both mean "unavailable"
// and callers degrade to a cheaper scoring strategy.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScoreModel submits a free-text scoring prompt to a language model and returns
// the raw response; the engine parses it.
type ScoreModel interface {
	Score(ctx context.Context, prompt string) (string, error)
}
