// Package retrieval orchestrates bounded multi-pass retrieval: broad hybrid
// search, cross-encoder reranking, concept-gap detection, and gap-driven
// query refinement.
package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/concept"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/usecase/fusion"
)

// Config holds iterative retrieval tuning knobs.
type Config struct {
	Enabled            bool
	InitialK           int
	FilteredTopK       int
	RelevanceThreshold float64
	MaxIterations      int
	StandardTopK       int
	StandardThreshold  float64
	VectorWeight       float64
	BM25Weight         float64
}

// Result is the outcome of one retrieval call.
type Result struct {
	Documents []domain.ScoredDocument
	Passes    int
}

// Service is the iterative retrieval controller.
type Service struct {
	cfg       Config
	store     Store
	search    Searcher
	rerank    Reranker
	extractor *concept.Extractor
	logger    *zap.Logger
}

// New creates a retrieval controller.
func New(
	cfg Config, store Store, search Searcher, rerank Reranker,
	extractor *concept.Extractor, logger *zap.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		search:    search,
		rerank:    rerank,
		extractor: extractor,
		logger:    logger,
	}
}

// Retrieve runs up to MaxIterations retrieval passes for the query and
// returns the accumulated best-scored documents, truncated to FilteredTopK.
// An invalid tenant is the only hard failure; every transient problem
// degrades to partial results.
func (s *Service) Retrieve(ctx context.Context, tenant, query string) (Result, error) {
	if strings.TrimSpace(tenant) == "" {
		return Result{}, domain.ErrInvalidTenant
	}

	if !s.cfg.Enabled {
		return s.standardRetrieve(ctx, tenant, query)
	}

	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	}()

	// The query-concept set is fixed for the whole call; only the pass
	// query changes.
	queryConcepts := s.extractor.Extract(query)

	best := make(map[string]domain.ScoredDocument)
	covered := concept.NewSet()
	current := query
	passes := 0

	for pass := 1; pass <= s.cfg.MaxIterations; pass++ {
		passes = pass

		vw, bw := fusion.SuggestWeightsFrom(current, s.cfg.VectorWeight, s.cfg.BM25Weight)
		candidates, err := s.search.Candidates(ctx, tenant, current, s.cfg.InitialK, vw, bw)
		if err != nil {
			s.logger.Warn("Broad retrieval failed, keeping accumulated results",
				zap.Int("pass", pass), zap.Error(err))
			break
		}
		if len(candidates) == 0 {
			break
		}

		for _, sd := range s.rerank.Rerank(ctx, tenant, current, candidates) {
			if sd.Score() < s.cfg.RelevanceThreshold {
				continue
			}
			doc := sd.Document()
			id := doc.Fingerprint()
			if existing, ok := best[id]; !ok || sd.Score() > existing.Score() {
				best[id] = sd
			}
			covered.Add(s.extractor.Extract(doc.Content())...)
		}

		gaps := concept.FindGaps(queryConcepts, covered)
		if len(gaps) == 0 || pass == s.cfg.MaxIterations {
			break
		}

		current = concept.GapQuery(query, gaps)
		s.logger.Debug("Concept gaps remain, refining query",
			zap.Int("pass", pass),
			zap.Strings("gaps", gaps),
		)
	}

	metrics.RetrievalPassesTotal.Observe(float64(passes))

	docs := make([]domain.ScoredDocument, 0, len(best))
	for _, sd := range best {
		docs = append(docs, sd)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score() != docs[j].Score() {
			return docs[i].Score() > docs[j].Score()
		}
		di, dj := docs[i].Document(), docs[j].Document()
		return di.Fingerprint() < dj.Fingerprint()
	})
	if len(docs) > s.cfg.FilteredTopK {
		docs = docs[:s.cfg.FilteredTopK]
	}

	s.logger.Info("Retrieval complete",
		zap.Int("passes", passes),
		zap.Int("results", len(docs)),
	)
	return Result{Documents: docs, Passes: passes}, nil
}

// standardRetrieve is the single-pass path used when the engine is disabled:
// smaller top-K, higher similarity threshold, no reranking loop. The store's
// own ordering is kept and no engine scores are attached.
func (s *Service) standardRetrieve(ctx context.Context, tenant, query string) (Result, error) {
	docs, err := s.store.SimilaritySearch(
		ctx, query, s.cfg.StandardTopK, s.cfg.StandardThreshold, tenant,
	)
	if err != nil {
		s.logger.Warn("Standard retrieval failed", zap.Error(err))
		return Result{}, nil
	}

	scored := make([]domain.ScoredDocument, len(docs))
	for i, doc := range docs {
		scored[i] = domain.NewScoredDocument(doc, 0)
	}
	return Result{Documents: scored, Passes: 1}, nil
}
