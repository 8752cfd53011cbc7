// Package retrieval embeds queries and fetches candidate decisions from the vector index.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
	"github.com/kailas-cloud/jurisrank/internal/logger"
	"github.com/kailas-cloud/jurisrank/internal/metrics"
)

// Client is the vector search client.
type Client struct {
	index         Index
	queryEmbed    Embedder
	documentEmbed Embedder
	timeout       time.Duration
}

// New creates a client. documentEmbed embeds decisions on upsert and may be
// the same embedder as queryEmbed. A zero timeout disables the deadline.
func New(index Index, queryEmbed, documentEmbed Embedder, timeout time.Duration) *Client {
	if documentEmbed == nil {
		documentEmbed = queryEmbed
	}
	return &Client{index: index, queryEmbed: queryEmbed, documentEmbed: documentEmbed, timeout: timeout}
}

// Backend names the underlying index.
func (c *Client) Backend() string { return c.index.Backend() }

// Query embeds text, searches the index and returns hits with
// Score >= scoreThreshold sorted by descending similarity.
// Every failure, including the deadline, is an *domain.UpstreamError.
func (c *Client) Query(
	ctx context.Context, text string, f filter.Expression, topK int, scoreThreshold float64,
) ([]caselaw.SearchResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	vec, err := c.embed(ctx, c.queryEmbed, text)
	if err != nil {
		return nil, err
	}

	backend := c.index.Backend()
	start := time.Now()
	results, err := c.index.Search(ctx, vec, f, topK)
	metrics.VectorSearchDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VectorSearchErrorsTotal.WithLabelValues(backend).Inc()
		logger.FromContext(ctx).Error("Vector search failed",
			zap.String("backend", backend),
			zap.Int("top_k", topK),
			zap.Error(err),
		)
		return nil, domain.NewUpstreamError(domain.ServiceVectorIndex, fmt.Errorf("search: %w", err))
	}

	out := results[:0]
	for _, r := range results {
		if r.Score >= scoreThreshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	logger.FromContext(ctx).Debug("Vector search completed",
		zap.String("backend", backend),
		zap.Int("hits", len(results)),
		zap.Int("kept", len(out)),
	)
	return out, nil
}

// Upsert embeds the decision text and writes it to the index.
func (c *Client) Upsert(ctx context.Context, d caselaw.Decision) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidDecision)
	}
	if strings.TrimSpace(d.Text) == "" {
		return fmt.Errorf("%w: text is required", domain.ErrInvalidDecision)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	vec, err := c.embed(ctx, c.documentEmbed, d.Text)
	if err != nil {
		return err
	}
	if err := c.index.Upsert(ctx, d, vec); err != nil {
		return domain.NewUpstreamError(domain.ServiceVectorIndex, fmt.Errorf("upsert: %w", err))
	}
	return nil
}

// Delete removes a decision from the index.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidDecision)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.index.Delete(ctx, id); err != nil {
		return domain.NewUpstreamError(domain.ServiceVectorIndex, fmt.Errorf("delete: %w", err))
	}
	return nil
}

func (c *Client) embed(ctx context.Context, e Embedder, text string) ([]float32, error) {
	res, err := e.Embed(ctx, text)
	if err != nil {
		return nil, domain.NewUpstreamError(domain.ServiceEmbedding, fmt.Errorf("embed: %w", err))
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embedding, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
