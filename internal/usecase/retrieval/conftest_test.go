package retrieval

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

type mockIndex struct {
	searchFn func(ctx context.Context, vector []float32, f filter.Expression, topK int) ([]caselaw.SearchResult, error)
	upsertFn func(ctx context.Context, d caselaw.Decision, vector []float32) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockIndex) Search(
	ctx context.Context, vector []float32, f filter.Expression, topK int,
) ([]caselaw.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, f, topK)
	}
	return nil, nil
}

func (m *mockIndex) Upsert(ctx context.Context, d caselaw.Decision, vector []float32) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, d, vector)
	}
	return nil
}

func (m *mockIndex) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockIndex) EnsureIndex(context.Context) error { return nil }
func (m *mockIndex) HealthCheck(context.Context) error { return nil }
func (m *mockIndex) Backend() string                   { return "mock" }

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 4}, nil
}

func hits(scores ...float64) []caselaw.SearchResult {
	out := make([]caselaw.SearchResult, len(scores))
	for i, s := range scores {
		out[i] = caselaw.SearchResult{ID: string(rune('a' + i)), Score: s}
	}
	return out
}
