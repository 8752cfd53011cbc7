package rerankcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/jurisrank/internal/db"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
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

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func testResults() []caselaw.ScoredResult {
	score := 0.9
	return []caselaw.ScoredResult{
		{
			SearchResult:  caselaw.SearchResult{ID: "a", Score: 0.8, Metadata: caselaw.Metadata{Court: "Hoge Raad"}},
			AdjustedScore: 0.9,
			CourtType:     caselaw.CourtHR,
			RerankScore:   &score,
		},
		{
			SearchResult:  caselaw.SearchResult{ID: "b", Score: 0.75},
			AdjustedScore: 0.7,
			CourtType:     caselaw.CourtUnknown,
		},
	}
}
