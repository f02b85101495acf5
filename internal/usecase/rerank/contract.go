package rerank

import (
	"context"
	"fmt"
)

// Embedder vectorizes text for the dedicated cross-encoder strategy.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScoreModel returns a free-text relevance judgement for a scoring prompt.
type ScoreModel interface {
	Score(ctx context.Context, prompt string) (string, error)
}

// ScoreCache stores per-document scores. A hit short-circuits all computation
// for that (tenant, query, document) pair.
type ScoreCache interface {
	Get(key string) (float64, bool)
	Put(key string, score float64)
}

// Mode selects the scoring strategy.
type Mode string

// Reranker modes.
const (
	ModeDedicated Mode = "dedicated"
	ModeLLM       Mode = "llm"
	ModeKeyword   Mode = "keyword"
	ModeAuto      Mode = "auto"
)

// ParseMode parses a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDedicated, ModeLLM, ModeKeyword, ModeAuto:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("unknown reranker mode %q", s)
}
