package jurisrank

import (
	"context"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// Metadata describes a decision (ECLI, court, legal area, date, narrative sections).
type Metadata = caselaw.Metadata

// Court tiers reported in Result.CourtType.
const (
	CourtHR        = string(caselaw.CourtHR)
	CourtHof       = string(caselaw.CourtHof)
	CourtRechtbank = string(caselaw.CourtRechtbank)
	CourtUnknown   = string(caselaw.CourtUnknown)
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Reranker orders documents by relevance to a query.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, query string, documents []string) ([]Ranking, error)
}

// Ranking is one entry of a reranker response. Index refers to the
// position in the documents slice.
type Ranking struct {
	Index     int
	Score     float64
	Rationale string
}

// Decision is a decision excerpt to index.
type Decision struct {
	ID       string
	Text     string
	Metadata Metadata
}

// SearchRequest describes a case search.
type SearchRequest struct {
	Text           string
	TopK           int // 0 uses the candidate pool
	ScoreThreshold float64
	Keywords       []string
	Courts         []string // any of
	LegalArea      string
	SinceYear      int
}

// Result is a ranked decision.
type Result struct {
	ID              string
	Score           float64 // raw similarity
	AdjustedScore   float64 // similarity plus court boost and keyword bonus
	CourtBoost      float64
	KeywordBonus    float64
	CourtType       string
	RerankScore     *float64
	RerankRationale string
	Metadata        Metadata
	Text            string
}

// Usage reports what a search consumed.
type Usage struct {
	EmbeddingTokens int
	Rerank          string // success, fallback, cache_hit, skipped
}

func resultFromDomain(r *caselaw.ScoredResult) Result {
	return Result{
		ID:              r.ID,
		Score:           r.Score,
		AdjustedScore:   r.AdjustedScore,
		CourtBoost:      r.Breakdown.CourtBoost,
		KeywordBonus:    r.Breakdown.KeywordBonus,
		CourtType:       string(r.CourtType),
		RerankScore:     r.RerankScore,
		RerankRationale: r.RerankRationale,
		Metadata:        r.Metadata,
		Text:            r.Text,
	}
}
