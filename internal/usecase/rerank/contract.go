package rerank

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// Cache stores reranked result lists by key. Implementations copy on read and write.
type Cache interface {
	Get(ctx context.Context, key string) ([]caselaw.ScoredResult, bool)
	Set(ctx context.Context, key string, results []caselaw.ScoredResult) error
	// Sweep drops expired entries.
	Sweep(ctx context.Context)
}
