package jurisrank

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbValkey "github.com/kailas-cloud/jurisrank/internal/db/valkey"
	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
	decisionrepo "github.com/kailas-cloud/jurisrank/internal/repository/decision"
	"github.com/kailas-cloud/jurisrank/internal/repository/rerankcache"
	"github.com/kailas-cloud/jurisrank/internal/transport/qdrantstore"
	healthuc "github.com/kailas-cloud/jurisrank/internal/usecase/health"
	rerankuc "github.com/kailas-cloud/jurisrank/internal/usecase/rerank"
	"github.com/kailas-cloud/jurisrank/internal/usecase/retrieval"
	"github.com/kailas-cloud/jurisrank/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/jurisrank/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDimensions       = 1024
	defaultSearchTimeout    = 5 * time.Second
	defaultCacheTTL         = 10 * time.Minute
)

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error)
}

type decisionUseCase interface {
	Upsert(ctx context.Context, d caselaw.Decision) error
	Delete(ctx context.Context, id string) error
}

// Client is the jurisrank entry point.
type Client struct {
	closers   []func()
	searchSvc searchUseCase
	decisions decisionUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to Valkey and ensures the decision index exists.
// The provided context is used for the readiness check and index bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	applyDefaults(cfg)

	if len(cfg.addrs) == 0 {
		return nil, errors.New("jurisrank: valkey address required (use WithValkey)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("jurisrank: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbValkey.NewStore(dbValkey.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("jurisrank: create valkey store: %w", err)
	}
	closers := []func(){store.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		closeAll()
		return nil, fmt.Errorf("jurisrank: database not ready: %w", err)
	}

	var index retrieval.Index
	if cfg.qdrantAddr != "" {
		qi, err := qdrantstore.New(qdrantstore.Config{
			Addr:        cfg.qdrantAddr,
			APIKey:      cfg.qdrantAPIKey,
			Collection:  cfg.qdrantCollection,
			Dimensions:  cfg.dimensions,
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("jurisrank: %w", err)
		}
		closers = append(closers, func() { _ = qi.Close() })
		index = qi
	} else {
		index = decisionrepo.New(store, cfg.dimensions, decisionrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	if err := index.EnsureIndex(ctx); err != nil {
		closeAll()
		return nil, fmt.Errorf("jurisrank: ensure index: %w", err)
	}

	c := wireClient(index, store, cfg, obs)
	c.closers = closers
	return c, nil
}

func applyDefaults(cfg *clientConfig) {
	if cfg.dimensions <= 0 {
		cfg.dimensions = defaultDimensions
	}
	if cfg.hnswM <= 0 {
		cfg.hnswM = 16
	}
	if cfg.hnswEFConstruct <= 0 {
		cfg.hnswEFConstruct = 200
	}
	if cfg.searchTimeout <= 0 {
		cfg.searchTimeout = defaultSearchTimeout
	}
	if cfg.candidatePool <= 0 {
		cfg.candidatePool = searchuc.DefaultCandidatePool
	}
	if cfg.cacheTTL <= 0 {
		cfg.cacheTTL = defaultCacheTTL
	}
	if cfg.qdrantCollection == "" {
		cfg.qdrantCollection = "decisions"
	}
}

// wireClient assembles the pipeline. db may be nil, which drops the database health check.
func wireClient(index retrieval.Index, db healthuc.DBPinger, cfg *clientConfig, obs *observer) *Client {
	emb := &embedderAdapter{inner: cfg.embedder}
	ret := retrieval.New(index, emb, emb, cfg.searchTimeout)

	scoringCfg := scoring.DefaultConfig()
	for tier, w := range cfg.courtWeights {
		scoringCfg.CourtWeights[caselaw.CourtType(tier)] = w
	}

	// nil interface, not a typed nil adapter, keeps the rerank step skipped
	var provider domain.Reranker
	if cfg.reranker != nil {
		provider = &rerankerAdapter{inner: cfg.reranker}
	}
	rr := rerankuc.New(provider, rerankcache.NewMemory(cfg.cacheTTL), rerankuc.DefaultConfig())

	health := healthuc.New(db).WithCriticalCheck("vector_index", index)
	if hc, ok := cfg.reranker.(domain.HealthChecker); ok {
		health = health.WithCheck("rerank", hc)
	}
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		health = health.WithCheck("embedding", hc)
	}

	return &Client{
		searchSvc: searchuc.New(ret, scoring.New(scoringCfg), rr, cfg.candidatePool),
		decisions: ret,
		healthSvc: health,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Search ranks indexed decisions for caseID. The second return value reports
// embedding tokens and how the rerank step ended.
func (c *Client) Search(ctx context.Context, caseID string, req SearchRequest) (_ []Result, _ Usage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "case_id", caseID) }()

	expr, err := filter.Restrict(req.Courts, req.LegalArea, req.SinceYear)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	q, err := query.New(req.Text, expr, req.TopK, req.ScoreThreshold, req.Keywords)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	scored, err := c.searchSvc.Search(ctx, caseID, &q)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("search: %w", err)
	}

	out := make([]Result, len(scored))
	for i := range scored {
		out[i] = resultFromDomain(&scored[i])
	}
	return out, Usage{EmbeddingTokens: usage.EmbeddingTokens, Rerank: usage.Rerank}, nil
}

// Upsert embeds and indexes a decision. An empty Metadata.ECLI defaults to ID.
func (c *Client) Upsert(ctx context.Context, d Decision) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert", start, err, "id", d.ID) }()

	if d.Metadata.ECLI == "" {
		d.Metadata.ECLI = d.ID
	}
	if err = c.decisions.Upsert(ctx, caselaw.Decision{ID: d.ID, Text: d.Text, Metadata: d.Metadata}); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Delete removes a decision from the index.
func (c *Client) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err, "id", id) }()

	if err = c.decisions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// rerankerAdapter wraps public Reranker to satisfy domain.Reranker.
type rerankerAdapter struct {
	inner Reranker
}

func (a *rerankerAdapter) Name() string { return a.inner.Name() }

func (a *rerankerAdapter) Rerank(ctx context.Context, q string, documents []string) ([]domain.Ranking, error) {
	rankings, err := a.inner.Rerank(ctx, q, documents)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	out := make([]domain.Ranking, len(rankings))
	for i, r := range rankings {
		out[i] = domain.Ranking{Index: r.Index, Score: r.Score, Rationale: r.Rationale}
	}
	return out, nil
}
