// Package batch ingests and removes decisions in bulk with per-item error reporting.
package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/logger"
)

// MaxBatchSize is the default maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch decision operations.
type Service struct {
	decisions    DecisionWriter
	maxBatchSize int
}

// New creates a batch service.
func New(decisions DecisionWriter) *Service {
	return &Service{decisions: decisions, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// MaxBatchSize returns the configured limit.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Upsert embeds and indexes decisions one by one. A repeated ID within the
// batch fails for every occurrence after the first. When the embedding provider
// is down or misconfigured the remaining items are failed without being tried.
func (s *Service) Upsert(ctx context.Context, items []caselaw.Decision) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(item.ID, s.oversize())
		}
		return results
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ID]; dup && item.ID != "" {
			results[i] = dombatch.NewError(item.ID, fmt.Errorf("%w: duplicate id in batch", domain.ErrInvalidDecision))
			continue
		}
		seen[item.ID] = struct{}{}

		if err := s.decisions.Upsert(ctx, item); err != nil {
			results[i] = dombatch.NewError(item.ID, err)
			if cascades(err) {
				for j := i + 1; j < len(items); j++ {
					results[j] = dombatch.NewError(items[j].ID, fmt.Errorf("skipped after provider failure: %w", err))
				}
				logger.FromContext(ctx).Warn("Batch upsert aborted",
					zap.Int("processed", i+1),
					zap.Int("total", len(items)),
					zap.Error(err),
				)
				return results
			}
			continue
		}
		results[i] = dombatch.NewOK(item.ID)
	}

	return results
}

// Delete removes decisions by ID in batch.
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		for i, id := range ids {
			results[i] = dombatch.NewError(id, s.oversize())
		}
		return results
	}

	for i, id := range ids {
		if err := s.decisions.Delete(ctx, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id)
	}

	return results
}

func (s *Service) oversize() error {
	return fmt.Errorf("%w: batch size exceeds %d", domain.ErrInvalidDecision, s.maxBatchSize)
}

// cascades reports whether err makes every following item fail the same way.
func cascades(err error) bool {
	if errors.Is(err, domain.ErrConfig) {
		return true
	}
	var ue *domain.UpstreamError
	return errors.As(err, &ue) && ue.Service == domain.ServiceEmbedding
}
