package caselaw

import (
	"sort"
	"strings"
)

// Decision is a pre-chunked decision excerpt as written into the vector index.
type Decision struct {
	ID       string
	Text     string
	Metadata Metadata
}

// SearchResult is a raw hit from the vector index.
// Score is the raw similarity in [0,1].
type SearchResult struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
	Text     string   `json:"text,omitempty"`
}

// Excerpt returns the text sent to rerank providers: the stored text,
// or the present narrative fields joined by newlines.
func (r SearchResult) Excerpt() string {
	if t := strings.TrimSpace(r.Text); t != "" {
		return t
	}
	parts := make([]string, 0, 6)
	for _, f := range r.Metadata.Narrative() {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n")
}

// ScoreBreakdown keeps the components of the adjusted score for explainability.
type ScoreBreakdown struct {
	BaseScore    float64 `json:"base_score"`
	CourtBoost   float64 `json:"court_boost"`
	KeywordBonus float64 `json:"keyword_bonus"`
}

// Total returns the clamped sum of the components.
func (b ScoreBreakdown) Total() float64 {
	return Clamp(b.BaseScore+b.CourtBoost+b.KeywordBonus, 0, 1)
}

// ScoredResult is a SearchResult with its composite relevance score.
// AdjustedScore always equals Breakdown.Total(); reranking never changes it.
type ScoredResult struct {
	SearchResult
	AdjustedScore   float64        `json:"adjusted_score"`
	Breakdown       ScoreBreakdown `json:"score_breakdown"`
	CourtType       CourtType      `json:"court_type"`
	RerankScore     *float64       `json:"rerank_score,omitempty"`
	RerankRationale string         `json:"rerank_rationale,omitempty"`
}

// Clone returns a deep copy so cached results cannot be mutated through aliases.
func (r ScoredResult) Clone() ScoredResult {
	out := r
	if r.RerankScore != nil {
		v := *r.RerankScore
		out.RerankScore = &v
	}
	return out
}

// CloneAll deep-copies a result list.
func CloneAll(in []ScoredResult) []ScoredResult {
	if in == nil {
		return nil
	}
	out := make([]ScoredResult, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SortByAdjusted stable-sorts results by descending adjusted score in place.
func SortByAdjusted(results []ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AdjustedScore > results[j].AdjustedScore
	})
}
