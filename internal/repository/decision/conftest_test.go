package decision

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jurisrank/internal/db"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

const testDims = 4

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	delFn         func(ctx context.Context, key string) error
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	pingFn        func(ctx context.Context) error
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testDims, HNSWConfig{M: 16, EFConstruct: 200}), ms
}

func testDecision() caselaw.Decision {
	return caselaw.Decision{
		ID:   "ECLI:NL:HR:2019:123",
		Text: "De huurder is de huur over drie maanden verschuldigd gebleven.",
		Metadata: caselaw.Metadata{
			ECLI:         "ECLI:NL:HR:2019:123",
			Court:        "Hoge Raad",
			LegalArea:    "Huurrecht",
			DecisionDate: "2019-05-03",
		},
	}
}
