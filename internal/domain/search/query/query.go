// Package query holds the validated search query passed through the ranking pipeline.
package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// Query limits.
const (
	// MaxTextLength is the maximum allowed query length in bytes.
	MaxTextLength = 4096
	MaxTopK       = 500
	MaxKeywords   = 32
)

// Query is an immutable, validated search query.
type Query struct {
	text           string
	filters        filter.Expression
	topK           int
	scoreThreshold float64
	keywords       []string
}

// New validates and normalizes search parameters.
// topK <= 0 is kept as 0 and means "use the configured candidate pool".
// Keywords are trimmed, blanks dropped and duplicates removed case-insensitively.
func New(
	text string,
	filters filter.Expression,
	topK int,
	scoreThreshold float64,
	keywords []string,
) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, fmt.Errorf("query text is required")
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxTextLength)
	}
	if topK < 0 {
		topK = 0
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if math.IsNaN(scoreThreshold) || scoreThreshold < 0 || scoreThreshold > 1 {
		return Query{}, fmt.Errorf("score_threshold must be between 0 and 1")
	}

	kw := normalizeKeywords(keywords)
	if len(kw) > MaxKeywords {
		return Query{}, fmt.Errorf("too many keywords (max %d)", MaxKeywords)
	}

	return Query{
		text:           text,
		filters:        filters,
		topK:           topK,
		scoreThreshold: scoreThreshold,
		keywords:       kw,
	}, nil
}

func normalizeKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		lk := strings.ToLower(k)
		if _, dup := seen[lk]; dup {
			continue
		}
		seen[lk] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Text returns the natural-language query.
func (q *Query) Text() string { return q.text }

// Filters returns the metadata predicate forwarded to the index.
func (q *Query) Filters() filter.Expression { return q.filters }

// TopK returns the requested candidate count, 0 when unset.
func (q *Query) TopK() int { return q.topK }

// ScoreThreshold returns the minimum raw similarity.
func (q *Query) ScoreThreshold() float64 { return q.scoreThreshold }

// Keywords returns a copy of the normalized keyword list.
func (q *Query) Keywords() []string {
	if q.keywords == nil {
		return nil
	}
	out := make([]string, len(q.keywords))
	copy(out, q.keywords)
	return out
}
