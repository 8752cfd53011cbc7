package retrieval

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// Index is the vector index contract shared by the Valkey and Qdrant backends.
type Index interface {
	Search(ctx context.Context, vector []float32, f filter.Expression, topK int) ([]caselaw.SearchResult, error)
	Upsert(ctx context.Context, d caselaw.Decision, vector []float32) error
	Delete(ctx context.Context, id string) error
	EnsureIndex(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Backend() string
}

// Embedder vectorizes query and decision text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
