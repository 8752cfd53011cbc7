// Package scoring computes the composite relevance score of a search hit
// from its raw similarity, the court tier and keyword evidence.
package scoring

import (
	"math"
	"strings"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// Config holds the ranking weights. It is read once at startup.
type Config struct {
	CourtWeights    map[caselaw.CourtType]float64
	KeywordPerMatch float64
	KeywordMaxBonus float64
}

// DefaultConfig returns the production weights.
func DefaultConfig() Config {
	return Config{
		CourtWeights: map[caselaw.CourtType]float64{
			caselaw.CourtHR:        0.10,
			caselaw.CourtHof:       0.05,
			caselaw.CourtRechtbank: 0,
			caselaw.CourtUnknown:   -0.05,
		},
		KeywordPerMatch: 0.015,
		KeywordMaxBonus: 0.045,
	}
}

// Engine scores and orders search results.
type Engine struct {
	cfg Config
}

// New creates an engine. The weight map is copied.
func New(cfg Config) *Engine {
	weights := make(map[caselaw.CourtType]float64, len(cfg.CourtWeights))
	for k, v := range cfg.CourtWeights {
		weights[k] = v
	}
	cfg.CourtWeights = weights
	return &Engine{cfg: cfg}
}

// KeywordBonus returns min(matches*perMatch, maxBonus).
func (e *Engine) KeywordBonus(r *caselaw.SearchResult, keywords []string) float64 {
	n := countKeywords(&r.Metadata, keywords)
	if n == 0 {
		return 0
	}
	return math.Min(float64(n)*e.cfg.KeywordPerMatch, e.cfg.KeywordMaxBonus)
}

// AdjustedScore scores a single result.
func (e *Engine) AdjustedScore(r caselaw.SearchResult, keywords []string) caselaw.ScoredResult {
	tier := courtTier(&r.Metadata)
	b := caselaw.ScoreBreakdown{
		BaseScore:    r.Score,
		CourtBoost:   e.cfg.CourtWeights[tier],
		KeywordBonus: e.KeywordBonus(&r, keywords),
	}
	return caselaw.ScoredResult{
		SearchResult:  r,
		AdjustedScore: b.Total(),
		Breakdown:     b,
		CourtType:     tier,
	}
}

// courtTier maps the court name. The ECLI carries the court code and is used
// only when no court name is stored.
func courtTier(md *caselaw.Metadata) caselaw.CourtType {
	if strings.TrimSpace(md.Court) == "" {
		return MapCourtLevel(md.ECLI)
	}
	return MapCourtLevel(md.Court)
}

// ScoreAndSort scores every result and stable-sorts by descending adjusted score.
func (e *Engine) ScoreAndSort(results []caselaw.SearchResult, keywords []string) []caselaw.ScoredResult {
	out := make([]caselaw.ScoredResult, len(results))
	for i := range results {
		out[i] = e.AdjustedScore(results[i], keywords)
	}
	caselaw.SortByAdjusted(out)
	return out
}
