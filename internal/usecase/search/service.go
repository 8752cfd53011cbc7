// Package search composes retrieval, scoring and reranking into the case search.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
	"github.com/kailas-cloud/jurisrank/internal/logger"
)

// DefaultCandidatePool is the candidate count when a query sets no topK.
const DefaultCandidatePool = 50

// MaxCaseIDLength bounds the case identifier.
const MaxCaseIDLength = 128

// Service runs case searches.
type Service struct {
	retriever     Retriever
	scorer        Scorer
	reranker      Reranker
	candidatePool int
}

// New creates a search service. candidatePool <= 0 uses DefaultCandidatePool.
func New(retriever Retriever, scorer Scorer, reranker Reranker, candidatePool int) *Service {
	if candidatePool <= 0 {
		candidatePool = DefaultCandidatePool
	}
	return &Service{retriever: retriever, scorer: scorer, reranker: reranker, candidatePool: candidatePool}
}

// Search returns prior decisions for caseID ordered by relevance to q.
// Vector index and embedding failures are returned as upstream errors;
// rerank failures fall back to the adjusted order.
func (s *Service) Search(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, fmt.Errorf("%w: case id is required", domain.ErrInvalidQuery)
	}
	if len(caseID) > MaxCaseIDLength {
		return nil, fmt.Errorf("%w: case id too long (max %d chars)", domain.ErrInvalidQuery, MaxCaseIDLength)
	}

	ctx = logger.With(ctx, zap.String("case_id", caseID))
	log := logger.FromContext(ctx)

	topK := q.TopK()
	if topK == 0 {
		topK = s.candidatePool
	}

	start := time.Now()
	hits, err := s.retriever.Query(ctx, q.Text(), q.Filters(), topK, q.ScoreThreshold())
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	scored := s.scorer.ScoreAndSort(hits, q.Keywords())

	results, err := s.reranker.Rerank(ctx, caseID, q.Text(), q.Filters(), scored)
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}

	log.Info("Search completed",
		zap.Int("top_k", topK),
		zap.Int("candidates", len(hits)),
		zap.Int("results", len(results)),
		zap.Int("keywords", len(q.Keywords())),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}
