package domain

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// Reranker is the capability shared by every rerank provider
// (cross-encoder endpoint, prompted language model).
type Reranker interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Rerank orders documents by relevance to query. Index refers to the
	// position in documents; the returned order is the provider's ranking.
	Rerank(ctx context.Context, query string, documents []string) ([]Ranking, error)
}

// Ranking is one entry of a provider ranking.
type Ranking struct {
	Index     int
	Score     float64
	Rationale string
	// Metadata is structured data the provider extracted, nil when none.
	Metadata *caselaw.Metadata
}
