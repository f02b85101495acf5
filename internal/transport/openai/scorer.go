package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// scoreMaxTokens bounds the completion; the engine only needs one number.
const scoreMaxTokens = 16

// Scorer submits relevance-scoring prompts to an OpenAI-compatible chat
// completion API. Temperature is pinned to 0 for deterministic scoring.
type Scorer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ScorerConfig holds the scoring provider settings.
type ScorerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewScorer creates an OpenAI-compatible chat scoring provider.
func NewScorer(cfg *ScorerConfig) *Scorer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Scorer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Score implements domain.ScoreModel: returns the raw model response text.
func (s *Scorer) Score(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   scoreMaxTokens,
	})
	if err != nil {
		metrics.ScoringRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", parseAPIError("scoring", err, domain.ErrScoringUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.ScoringRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", fmt.Errorf("empty scoring response: %w", domain.ErrScoringUnavailable)
	}

	metrics.ScoringRequestsTotal.WithLabelValues(s.model, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
