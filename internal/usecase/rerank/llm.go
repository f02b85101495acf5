package rerank

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// maxPromptChars bounds the document text included in a scoring prompt.
const maxPromptChars = 1500

// neutralScore is assigned when the model's answer cannot be parsed.
const neutralScore = 0.5

var numericTokenRegex = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// llmScorer prompts a language model per document through a bounded worker
// pool. Timed-out documents are dropped from the batch (absent, not zero);
// a saturated pool stops submission for the rest of the call.
type llmScorer struct {
	model     ScoreModel
	keyword   *keywordScorer
	pool      *Pool
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

type llmResult struct {
	score   float64
	dropped bool
}

func newLLMScorer(
	model ScoreModel, keyword *keywordScorer, pool *Pool,
	batchSize int, timeout time.Duration, logger *zap.Logger,
) *llmScorer {
	return &llmScorer{
		model:     model,
		keyword:   keyword,
		pool:      pool,
		batchSize: batchSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// scoreAll returns results aligned with docs.
func (l *llmScorer) scoreAll(ctx context.Context, query string, docs []domain.Document) []llmResult {
	results := make([]llmResult, len(docs))
	var mu sync.Mutex

	saturated := false
	for start := 0; start < len(docs) && !saturated; start += l.batchSize {
		end := start + l.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			doc := docs[i]
			wg.Add(1)
			err := l.pool.Submit(func() {
				defer wg.Done()
				res := l.scoreOne(ctx, query, doc)
				mu.Lock()
				results[i] = res
				mu.Unlock()
			})
			if err != nil {
				wg.Done()
				l.logger.Warn("Scoring pool saturated, returning partial results",
					zap.Int("submitted", i), zap.Int("total", len(docs)))
				l.markDropped(results, i, len(docs), &mu)
				metrics.RerankDroppedTotal.WithLabelValues("saturated").Add(float64(len(docs) - i))
				saturated = true
				break
			}
		}
		wg.Wait()
	}

	return results
}

// scoreOne prompts the model under the task deadline. Timeouts drop the
// document; other model failures degrade to keyword scoring.
func (l *llmScorer) scoreOne(ctx context.Context, query string, doc domain.Document) llmResult {
	taskCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.model.Score(taskCtx, l.buildPrompt(query, doc))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.logger.Warn("LLM scoring timed out, dropping document",
				zap.String("source", doc.Source()), zap.Duration("timeout", l.timeout))
			metrics.RerankDroppedTotal.WithLabelValues("timeout").Inc()
			return llmResult{dropped: true}
		}
		l.logger.Warn("LLM scoring failed, keyword fallback for document",
			zap.String("source", doc.Source()), zap.Error(err))
		metrics.RerankFallbacksTotal.WithLabelValues(string(ModeLLM), "model_error").Inc()
		return llmResult{score: l.keyword.score(query, doc)}
	}

	return llmResult{score: parseScore(resp)}
}

func (l *llmScorer) markDropped(results []llmResult, from, to int, mu *sync.Mutex) {
	mu.Lock()
	defer mu.Unlock()
	for i := from; i < to; i++ {
		results[i] = llmResult{dropped: true}
	}
}

func (l *llmScorer) buildPrompt(query string, doc domain.Document) string {
	content := doc.Content()
	if len(content) > maxPromptChars {
		content = content[:maxPromptChars]
	}
	return fmt.Sprintf(
		"Rate the relevance of the document to the query on a scale from 0.0 to 1.0.\n"+
			"Respond with only the number.\n\nQuery: %s\n\nDocument: %s\n\nScore:",
		query, content,
	)
}

// parseScore extracts the first numeric token from the model response and
// clamps it to [0, 1]. Unparsable responses score neutral (0.5).
func parseScore(resp string) float64 {
	token := numericTokenRegex.FindString(resp)
	if token == "" {
		return neutralScore
	}
	score, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return neutralScore
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
