package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/config"
	dbValkey "github.com/kailas-cloud/jurisrank/internal/db/valkey"
	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/metrics"
	decisionrepo "github.com/kailas-cloud/jurisrank/internal/repository/decision"
	"github.com/kailas-cloud/jurisrank/internal/repository/embcache"
	"github.com/kailas-cloud/jurisrank/internal/repository/rerankcache"
	"github.com/kailas-cloud/jurisrank/internal/transport/crossencoder"
	openaiTransport "github.com/kailas-cloud/jurisrank/internal/transport/openai"
	"github.com/kailas-cloud/jurisrank/internal/transport/qdrantstore"
	batchuc "github.com/kailas-cloud/jurisrank/internal/usecase/batch"
	embeddinguc "github.com/kailas-cloud/jurisrank/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jurisrank/internal/usecase/health"
	rerankuc "github.com/kailas-cloud/jurisrank/internal/usecase/rerank"
	"github.com/kailas-cloud/jurisrank/internal/usecase/retrieval"
	"github.com/kailas-cloud/jurisrank/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/jurisrank/internal/usecase/search"
)

// app is the composition root shared by serve and query.
type app struct {
	search    *searchuc.Service
	retrieval *retrieval.Client
	batch     *batchuc.Service
	health    *healthuc.Service
	closers   []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRankingMetrics()

	docEmbedder := buildEmbedder(&cfg.Embedding, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(&cfg.Embedding, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	index, closeIndex, err := buildIndex(&cfg.Index, store)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeIndex)

	if err := index.EnsureIndex(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure %s index: %w", index.Backend(), err)
	}
	logger.Info("Vector index ready", zap.String("backend", index.Backend()))

	a.retrieval = retrieval.New(index, queryEmbedder, docEmbedder, cfg.Index.SearchTimeout())
	a.batch = batchuc.New(a.retrieval).WithMaxBatchSize(cfg.Index.MaxBatchSize)

	provider := buildRerankProvider(&cfg.Rerank, logger)
	rerankClient := rerankuc.New(provider, buildRerankCache(&cfg.Cache, store, logger), rerankuc.Config{
		BatchSize:         cfg.Rerank.BatchSize,
		MaxDocumentTokens: cfg.Rerank.MaxDocumentTokens,
		Timeout:           cfg.Rerank.Timeout(),
		CacheVersion:      cfg.Cache.Version,
	})

	a.search = searchuc.New(
		a.retrieval,
		scoring.New(scoringConfig(&cfg.Ranking)),
		rerankClient,
		cfg.Ranking.CandidatePool,
	)

	a.health = healthuc.New(store).
		WithCriticalCheck("vector_index", index).
		WithCheck("embedding", asChecker(docEmbedder)).
		WithCheck("rerank", asChecker(provider))

	return a, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg *config.EmbeddingConfig,
	instruction string,
	store *dbValkey.Store,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil && cfg.CacheTTLSec > 0 {
		embedder = embcache.New(base, store, cfg.Model, cfg.CacheTTL(), metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)

	// Instruction prefix (outermost, the cache key includes the instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

func buildIndex(cfg *config.IndexConfig, store *dbValkey.Store) (retrieval.Index, func(), error) {
	switch cfg.Backend {
	case config.BackendQdrant:
		idx, err := qdrantstore.New(qdrantstore.Config{
			Addr:        cfg.QdrantAddr,
			APIKey:      cfg.QdrantAPIKey,
			Collection:  cfg.Name,
			Dimensions:  cfg.Dimensions,
			M:           cfg.HNSWM,
			EFConstruct: cfg.HNSWEFConstruct,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create qdrant index: %w", err)
		}
		return idx, func() { _ = idx.Close() }, nil
	default:
		repo := decisionrepo.New(store, cfg.Dimensions, decisionrepo.HNSWConfig{
			M:           cfg.HNSWM,
			EFConstruct: cfg.HNSWEFConstruct,
		})
		return repo, func() {}, nil
	}
}

// buildRerankProvider returns a nil interface (not a typed nil pointer) when
// reranking is disabled, so the rerank client reports the step as skipped.
func buildRerankProvider(cfg *config.RerankConfig, logger *zap.Logger) domain.Reranker {
	switch cfg.Provider {
	case config.RerankCrossEncoder:
		opts := []crossencoder.Option{crossencoder.WithAPIKey(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, crossencoder.WithModel(cfg.Model))
		}
		if cfg.APIStyle == config.RerankStyleCohere {
			opts = append(opts, crossencoder.WithCohereAPI())
		}
		return crossencoder.New(cfg.BaseURL, opts...)
	case config.RerankLLM:
		return openaiTransport.NewRanker(&openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: config.RerankLLM,
			Logger:   logger,
		})
	default:
		return nil
	}
}

func buildRerankCache(cfg *config.CacheConfig, store *dbValkey.Store, logger *zap.Logger) rerankuc.Cache {
	if cfg.Driver == config.CacheValkey {
		return rerankcache.NewKV(store, cfg.TTL(), logger)
	}
	return rerankcache.NewMemory(cfg.TTL())
}

func scoringConfig(cfg *config.RankingConfig) scoring.Config {
	out := scoring.DefaultConfig()
	tiers := map[string]caselaw.CourtType{
		config.CourtHR:        caselaw.CourtHR,
		config.CourtHof:       caselaw.CourtHof,
		config.CourtRechtbank: caselaw.CourtRechtbank,
		config.CourtUnknown:   caselaw.CourtUnknown,
	}
	for key, tier := range tiers {
		if w, ok := cfg.CourtWeights[key]; ok {
			out.CourtWeights[tier] = w
		}
	}
	if cfg.KeywordPerMatch != nil {
		out.KeywordPerMatch = *cfg.KeywordPerMatch
	}
	if cfg.KeywordMaxBonus != nil {
		out.KeywordMaxBonus = *cfg.KeywordMaxBonus
	}
	return out
}

// asChecker returns v as a health checker, or a nil interface when v has no HealthCheck.
func asChecker(v any) healthuc.Checker {
	if c, ok := v.(domain.HealthChecker); ok {
		return c
	}
	return nil
}
