package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/config"
	"github.com/kailas-cloud/ragdex/internal/domain/concept"
	"github.com/kailas-cloud/ragdex/internal/domain/lexical"
	logpkg "github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/repository/scorecache"
	chiTransport "github.com/kailas-cloud/ragdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	redisTransport "github.com/kailas-cloud/ragdex/internal/transport/redis"
	fusionuc "github.com/kailas-cloud/ragdex/internal/usecase/fusion"
	rerankuc "github.com/kailas-cloud/ragdex/internal/usecase/rerank"
	retrievaluc "github.com/kailas-cloud/ragdex/internal/usecase/retrieval"
	"github.com/kailas-cloud/ragdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragdex retrieval engine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("reranker_mode", cfg.Reranker.Mode),
	)

	metrics.RegisterRetrievalMetrics()

	// External collaborators — composition root
	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	var scoreModel rerankuc.ScoreModel
	if cfg.Scoring.Model != "" {
		scoreModel = openaiTransport.NewScorer(&openaiTransport.ScorerConfig{
			APIKey:  cfg.Scoring.APIKey,
			BaseURL: cfg.Scoring.BaseURL,
			Model:   cfg.Scoring.Model,
			Logger:  logger,
		})
	}

	store, err := redisTransport.NewStore(redisTransport.Config{
		Addrs:     cfg.Database.Addrs,
		Password:  cfg.Database.Password,
		IndexName: cfg.Database.IndexName,
	}, embedder)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Engine assembly
	extractor := concept.NewExtractor()

	mode, err := rerankuc.ParseMode(cfg.Reranker.Mode)
	if err != nil {
		logger.Fatal("Invalid reranker mode", zap.Error(err))
	}

	pool := rerankuc.NewPool(cfg.Reranker.MaxWorkers, cfg.Reranker.QueueSize)
	defer pool.Close()

	cache := scorecache.New(
		cfg.Cache.Size,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.ScoreCacheTotal,
	)

	reranker := rerankuc.New(
		rerankuc.Config{
			Mode:      mode,
			BatchSize: cfg.Reranker.BatchSize,
			Timeout:   time.Duration(cfg.Reranker.TimeoutSec) * time.Second,
		},
		embedder, scoreModel, pool, cache, extractor, logger,
	)

	fusionSvc := fusionuc.New(store, lexical.NewScorer(), logger)

	retrievalSvc := retrievaluc.New(
		retrievaluc.Config{
			Enabled:            cfg.Retrieval.Enabled,
			InitialK:           cfg.Retrieval.InitialK,
			FilteredTopK:       cfg.Retrieval.FilteredTopK,
			RelevanceThreshold: cfg.Retrieval.RelevanceThreshold,
			MaxIterations:      cfg.Retrieval.MaxIterations,
			StandardTopK:       cfg.Retrieval.StandardTopK,
			StandardThreshold:  cfg.Retrieval.StandardThreshold,
			VectorWeight:       cfg.Fusion.VectorWeight,
			BM25Weight:         cfg.Fusion.BM25Weight,
		},
		store, fusionSvc, reranker, extractor, logger,
	)

	server := chiTransport.NewServer(retrievalSvc, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
