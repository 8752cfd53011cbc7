package rerank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// fakeProvider records calls and returns rerankFn's answer.
type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	lastDocs []string
	rerankFn func(ctx context.Context, query string, docs []string) ([]domain.Ranking, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Rerank(ctx context.Context, query string, docs []string) ([]domain.Ranking, error) {
	p.mu.Lock()
	p.calls++
	p.lastDocs = docs
	p.mu.Unlock()
	if p.rerankFn != nil {
		return p.rerankFn(ctx, query, docs)
	}
	return reverse(len(docs)), nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// reverse ranks documents last to first with descending scores.
func reverse(n int) []domain.Ranking {
	out := make([]domain.Ranking, n)
	for i := range out {
		out[i] = domain.Ranking{Index: n - 1 - i, Score: 1 - float64(i)*0.1}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// mockCache implements Cache for error paths.
type mockCache struct {
	getFn   func(ctx context.Context, key string) ([]caselaw.ScoredResult, bool)
	setFn   func(ctx context.Context, key string, results []caselaw.ScoredResult) error
	sweeps  int
	setKeys []string
}

func (m *mockCache) Get(ctx context.Context, key string) ([]caselaw.ScoredResult, bool) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, false
}

func (m *mockCache) Set(ctx context.Context, key string, results []caselaw.ScoredResult) error {
	m.setKeys = append(m.setKeys, key)
	if m.setFn != nil {
		return m.setFn(ctx, key, results)
	}
	return nil
}

func (m *mockCache) Sweep(context.Context) { m.sweeps++ }

// candidates returns n results with strictly descending adjusted scores.
func candidates(n int) []caselaw.ScoredResult {
	out := make([]caselaw.ScoredResult, n)
	for i := range out {
		score := 0.9 - float64(i)*0.01
		out[i] = caselaw.ScoredResult{
			SearchResult: caselaw.SearchResult{
				ID:    fmt.Sprintf("d%02d", i),
				Score: score,
				Text:  fmt.Sprintf("uitspraak %d over huurachterstand", i),
				Metadata: caselaw.Metadata{
					ECLI:  fmt.Sprintf("ECLI:NL:RBAMS:2020:%d", i),
					Court: "Rechtbank Amsterdam",
				},
			},
			AdjustedScore: score,
			Breakdown:     caselaw.ScoreBreakdown{BaseScore: score},
			CourtType:     caselaw.CourtRechtbank,
		}
	}
	return out
}

func ids(results []caselaw.ScoredResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}
