// Package rerank submits the top candidates to a rerank provider and merges
// the provider ordering back, falling back to the adjusted order on failure.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
	"github.com/kailas-cloud/jurisrank/internal/logger"
	"github.com/kailas-cloud/jurisrank/internal/metrics"
)

// Config holds rerank settings. It is read once at startup.
type Config struct {
	BatchSize         int
	MaxDocumentTokens int
	Timeout           time.Duration
	CacheVersion      string
}

// DefaultConfig returns the production rerank settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:         20,
		MaxDocumentTokens: 512,
		Timeout:           15 * time.Second,
		CacheVersion:      "2",
	}
}

// Client reranks scored candidates.
type Client struct {
	provider domain.Reranker
	cache    Cache
	cfg      Config
}

// New creates a rerank client. A nil provider disables reranking and
// a nil cache disables caching.
func New(provider domain.Reranker, cache Cache, cfg Config) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Client{provider: provider, cache: cache, cfg: cfg}
}

// Provider names the configured provider, "none" when disabled.
func (c *Client) Provider() string {
	if c.provider == nil {
		return "none"
	}
	return c.provider.Name()
}

// Rerank returns every candidate exactly once. The first BatchSize by adjusted
// score are ordered by the provider; the rest follow unchanged.
// Only a configuration error from the provider is returned; other provider
// failures yield the adjusted order.
func (c *Client) Rerank(
	ctx context.Context, caseID, query string, f filter.Expression, candidates []caselaw.ScoredResult,
) ([]caselaw.ScoredResult, error) {
	usage := domain.UsageFromContext(ctx)
	ordered := caselaw.CloneAll(candidates)
	caselaw.SortByAdjusted(ordered)

	if c.provider == nil || len(ordered) == 0 {
		usage.SetRerank(domain.RerankSkipped)
		return ordered, nil
	}

	name := c.provider.Name()
	log := logger.FromContext(ctx)
	key := CacheKey(c.cfg.CacheVersion, caseID, query, f.Fingerprint(), CandidateDigest(ordered))

	if c.cache != nil {
		c.cache.Sweep(ctx)
		if cached, ok := c.cache.Get(ctx, key); ok {
			metrics.RerankCacheTotal.WithLabelValues("hit").Inc()
			metrics.RerankRequestsTotal.WithLabelValues(name, domain.RerankCacheHit).Inc()
			usage.SetRerank(domain.RerankCacheHit)
			log.Debug("Rerank cache hit", zap.String("provider", name), zap.Int("results", len(cached)))
			return cached, nil
		}
		metrics.RerankCacheTotal.WithLabelValues("miss").Inc()
	}

	n := min(c.cfg.BatchSize, len(ordered))
	batch, remainder := ordered[:n], ordered[n:]

	docs := make([]string, len(batch))
	for i := range batch {
		docs[i] = buildDocument(&batch[i], c.cfg.MaxDocumentTokens)
	}

	reranked, err := c.callProvider(ctx, query, docs, batch)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		metrics.RerankRequestsTotal.WithLabelValues(name, domain.RerankFallback).Inc()
		usage.SetRerank(domain.RerankFallback)
		log.Warn("Rerank failed, using adjusted order",
			zap.String("provider", name),
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return ordered, nil
	}

	out := make([]caselaw.ScoredResult, 0, len(ordered))
	out = append(out, reranked...)
	out = append(out, remainder...)

	metrics.RerankRequestsTotal.WithLabelValues(name, domain.RerankSuccess).Inc()
	usage.SetRerank(domain.RerankSuccess)

	if c.cache != nil {
		c.cache.Sweep(ctx)
		if err := c.cache.Set(ctx, key, out); err != nil {
			log.Warn("Failed to cache rerank results", zap.String("provider", name), zap.Error(err))
		}
	}
	return out, nil
}

func (c *Client) callProvider(
	ctx context.Context, query string, docs []string, batch []caselaw.ScoredResult,
) ([]caselaw.ScoredResult, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	rankings, err := c.provider.Rerank(ctx, query, docs)
	metrics.RerankDuration.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", c.provider.Name(), err)
	}
	return applyRankings(c.provider.Name(), batch, rankings)
}

// applyRankings orders batch by the provider ranking. Items the provider
// did not rank follow in their current order. Duplicate indices are ignored.
func applyRankings(provider string, batch []caselaw.ScoredResult, rankings []domain.Ranking) ([]caselaw.ScoredResult, error) {
	if len(rankings) == 0 {
		return nil, domain.NewMalformedResponse(provider, "empty ranking")
	}
	for _, rk := range rankings {
		if rk.Index < 0 || rk.Index >= len(batch) {
			return nil, domain.NewMalformedResponse(provider,
				fmt.Sprintf("index %d out of range [0,%d)", rk.Index, len(batch)))
		}
	}

	used := make([]bool, len(batch))
	out := make([]caselaw.ScoredResult, 0, len(batch))
	for _, rk := range rankings {
		if used[rk.Index] {
			continue
		}
		used[rk.Index] = true

		r := batch[rk.Index].Clone()
		score := caselaw.Clamp(rk.Score, 0, 1)
		r.RerankScore = &score
		r.RerankRationale = rk.Rationale
		if rk.Metadata != nil {
			r.Metadata = r.Metadata.Merge(*rk.Metadata)
		}
		out = append(out, r)
	}
	for i := range batch {
		if !used[i] {
			out = append(out, batch[i])
		}
	}
	return out, nil
}
