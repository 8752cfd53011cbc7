package jurisrank

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// --- retrieval.Index mock ---

type mockIndex struct {
	searchFn func(ctx context.Context, vector []float32, f filter.Expression, topK int) ([]caselaw.SearchResult, error)
	upsertFn func(ctx context.Context, d caselaw.Decision, vector []float32) error
	deleteFn func(ctx context.Context, id string) error
	healthFn func(ctx context.Context) error
}

func (m *mockIndex) Search(
	ctx context.Context, vector []float32, f filter.Expression, topK int,
) ([]caselaw.SearchResult, error) {
	return m.searchFn(ctx, vector, f, topK)
}

func (m *mockIndex) Upsert(ctx context.Context, d caselaw.Decision, vector []float32) error {
	return m.upsertFn(ctx, d, vector)
}

func (m *mockIndex) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockIndex) EnsureIndex(context.Context) error { return nil }

func (m *mockIndex) HealthCheck(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

func (m *mockIndex) Backend() string { return "mock" }

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	if m.fn != nil {
		return m.fn(ctx, text)
	}
	return EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, PromptTokens: 4, TotalTokens: 4}, nil
}

// --- Reranker mock ---

type mockReranker struct {
	calls int
	fn    func(ctx context.Context, query string, documents []string) ([]Ranking, error)
}

func (m *mockReranker) Name() string { return "mock" }

func (m *mockReranker) Rerank(ctx context.Context, query string, documents []string) ([]Ranking, error) {
	m.calls++
	return m.fn(ctx, query, documents)
}

// --- DB pinger mock ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func threeDecisions() []caselaw.SearchResult {
	return []caselaw.SearchResult{
		{ID: "rb", Score: 0.70, Text: "kantonrechter ontbinding", Metadata: caselaw.Metadata{Court: "Rechtbank Amsterdam"}},
		{ID: "hr", Score: 0.80, Text: "huurachterstand ontbinding", Metadata: caselaw.Metadata{Court: "Hoge Raad"}},
		{ID: "hof", Score: 0.73, Text: "hoger beroep huur", Metadata: caselaw.Metadata{Court: "Gerechtshof Amsterdam"}},
	}
}
