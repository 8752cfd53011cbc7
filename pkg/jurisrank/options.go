package jurisrank

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	qdrantAddr       string
	qdrantAPIKey     string
	qdrantCollection string

	embedder Embedder
	reranker Reranker

	dimensions      int
	hnswM           int
	hnswEFConstruct int
	searchTimeout   time.Duration
	candidatePool   int
	courtWeights    map[string]float64
	cacheTTL        time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the Valkey instance. It is required: it backs the
// decision index unless WithQdrant is set.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithQdrant stores decisions in a Qdrant collection instead of Valkey.
func WithQdrant(addr, apiKey, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantAddr = addr
		c.qdrantAPIKey = apiKey
		c.qdrantCollection = collection
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithReranker enables the rerank step. Without it results keep the adjusted order.
func WithReranker(r Reranker) Option {
	return optionFunc(func(c *clientConfig) {
		c.reranker = r
	})
}

// WithDimensions sets the embedding vector dimension. Defaults to 1024.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithSearchTimeout bounds each vector index query. Default: 5s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithCandidatePool sets how many candidates a search retrieves when
// SearchRequest.TopK is zero. Default: 50.
func WithCandidatePool(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidatePool = n
	})
}

// WithCourtWeight overrides the boost of a court tier ("HR", "Hof", "Rechtbank", "Unknown").
func WithCourtWeight(tier string, weight float64) Option {
	return optionFunc(func(c *clientConfig) {
		if c.courtWeights == nil {
			c.courtWeights = make(map[string]float64)
		}
		c.courtWeights[tier] = weight
	})
}

// WithRerankCacheTTL sets how long reranked lists are reused. Default: 10m.
func WithRerankCacheTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
