package search

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// Retriever fetches candidates from the vector index.
type Retriever interface {
	Query(
		ctx context.Context, text string, f filter.Expression, topK int, scoreThreshold float64,
	) ([]caselaw.SearchResult, error)
}

// Scorer computes adjusted scores.
type Scorer interface {
	ScoreAndSort(results []caselaw.SearchResult, keywords []string) []caselaw.ScoredResult
}

// Reranker reorders the top of the scored list.
type Reranker interface {
	Rerank(
		ctx context.Context, caseID, query string, f filter.Expression, candidates []caselaw.ScoredResult,
	) ([]caselaw.ScoredResult, error)
}
