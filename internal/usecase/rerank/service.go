// Package rerank scores (query, document) pairs with one of three
// interchangeable cross-encoder strategies and returns candidates ordered by
// relevance. Every internal failure degrades to a cheaper strategy; the
// package never returns an error to its caller.
package rerank

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/concept"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// Config holds reranker tuning knobs.
type Config struct {
	Mode      Mode
	BatchSize int
	Timeout   time.Duration
}

// Service is the cross-encoder reranker.
type Service struct {
	mode      Mode
	embed     Embedder
	model     ScoreModel
	cache     ScoreCache
	keyword   *keywordScorer
	dedicated *dedicatedScorer
	llm       *llmScorer
	logger    *zap.Logger
}

// New creates a reranker. embed, model, pool and cache may each be nil; the
// service degrades to whatever strategies remain wired.
func New(
	cfg Config,
	embed Embedder, model ScoreModel, pool *Pool, cache ScoreCache,
	extractor *concept.Extractor, logger *zap.Logger,
) *Service {
	keyword := newKeywordScorer(extractor)

	s := &Service{
		mode:    cfg.Mode,
		embed:   embed,
		model:   model,
		cache:   cache,
		keyword: keyword,
		logger:  logger,
	}
	if embed != nil {
		s.dedicated = newDedicatedScorer(embed, keyword, logger)
	}
	if model != nil && pool != nil {
		s.llm = newLLMScorer(model, keyword, pool, cfg.BatchSize, cfg.Timeout, logger)
	}
	return s
}

// Rerank scores documents against the query and returns them sorted by score
// descending. Output length is at most the input length: LLM-mode documents
// may be dropped on timeout or pool saturation. Scores lie in [0, 1]. Ties
// keep the original candidate order.
func (s *Service) Rerank(
	ctx context.Context, tenant, query string, docs []domain.Document,
) []domain.ScoredDocument {
	if len(docs) == 0 {
		return nil
	}

	mode := s.resolveMode()
	start := time.Now()

	scores := make([]float64, len(docs))
	include := make([]bool, len(docs))

	// Cache hits short-circuit all computation for the pair.
	var pendingIdx []int
	for i, doc := range docs {
		if s.cache != nil {
			if cached, ok := s.cache.Get(s.cacheKey(tenant, query, doc)); ok {
				scores[i] = cached
				include[i] = true
				continue
			}
		}
		pendingIdx = append(pendingIdx, i)
	}

	if len(pendingIdx) > 0 {
		pendingDocs := make([]domain.Document, len(pendingIdx))
		for n, i := range pendingIdx {
			pendingDocs[n] = docs[i]
		}

		switch mode {
		case ModeDedicated:
			for n, score := range s.dedicated.scoreAll(ctx, query, pendingDocs) {
				i := pendingIdx[n]
				scores[i] = score
				include[i] = true
			}
		case ModeLLM:
			for n, res := range s.llm.scoreAll(ctx, query, pendingDocs) {
				if res.dropped {
					continue
				}
				i := pendingIdx[n]
				scores[i] = res.score
				include[i] = true
			}
		default:
			for n, doc := range pendingDocs {
				i := pendingIdx[n]
				scores[i] = s.keyword.score(query, doc)
				include[i] = true
			}
		}

		if s.cache != nil {
			for n, i := range pendingIdx {
				if include[i] {
					s.cache.Put(s.cacheKey(tenant, query, pendingDocs[n]), scores[i])
				}
			}
		}
	}

	out := make([]domain.ScoredDocument, 0, len(docs))
	for i, doc := range docs {
		if include[i] {
			out = append(out, domain.NewScoredDocument(doc, scores[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})

	metrics.RerankRequestsTotal.WithLabelValues(string(mode), "ok").Inc()
	metrics.RerankDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	s.logger.Debug("Reranked candidates",
		zap.String("strategy", string(mode)),
		zap.Int("in", len(docs)),
		zap.Int("out", len(out)),
	)
	return out
}

// resolveMode maps the configured mode to an executable one given the wired
// collaborators. AUTO prefers LLM, then keyword.
func (s *Service) resolveMode() Mode {
	switch s.mode {
	case ModeDedicated:
		if s.dedicated != nil {
			return ModeDedicated
		}
	case ModeLLM:
		if s.llm != nil {
			return ModeLLM
		}
	case ModeAuto:
		if s.llm != nil {
			return ModeLLM
		}
	case ModeKeyword:
	}
	return ModeKeyword
}

// cacheKey builds the tenant|query|source|content-hash cache key.
func (s *Service) cacheKey(tenant, query string, doc domain.Document) string {
	return tenant + "|" + query + "|" + doc.Source() + "|" + domain.ContentHash(doc.Content())
}
