package chi

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/jurisrank/internal/usecase/health"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error)
}

func (m *mockSearcher) Search(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error) {
	return m.searchFn(ctx, caseID, q)
}

type mockDecisions struct {
	upsertFn func(ctx context.Context, d caselaw.Decision) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockDecisions) Upsert(ctx context.Context, d caselaw.Decision) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, d)
	}
	return nil
}

func (m *mockDecisions) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(t *testing.T, s Searcher, d DecisionStore, h HealthChecker) http.Handler {
	t.Helper()
	return newTestRouterWithBatch(t, s, d, nil, h)
}

func newTestRouterWithBatch(t *testing.T, s Searcher, d DecisionStore, b BatchService, h HealthChecker) http.Handler {
	t.Helper()
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}}
	}
	r := chi.NewRouter()
	NewServer(s, d, b, h, zap.NewNop()).Routes(r)
	return r
}

type mockBatch struct {
	max      int
	upsertFn func(ctx context.Context, items []caselaw.Decision) []dombatch.Result
	deleteFn func(ctx context.Context, ids []string) []dombatch.Result
}

func (m *mockBatch) Upsert(ctx context.Context, items []caselaw.Decision) []dombatch.Result {
	return m.upsertFn(ctx, items)
}

func (m *mockBatch) Delete(ctx context.Context, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, ids)
}

func (m *mockBatch) MaxBatchSize() int { return m.max }

func floatPtr(f float64) *float64 { return &f }
