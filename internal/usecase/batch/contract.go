package batch

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// DecisionWriter embeds and writes or removes a single decision.
type DecisionWriter interface {
	Upsert(ctx context.Context, d caselaw.Decision) error
	Delete(ctx context.Context, id string) error
}
