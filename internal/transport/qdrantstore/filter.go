package qdrantstore

import (
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// buildFilter translates a filter.Expression into a Qdrant payload filter.
// Returns nil for an empty expression.
func buildFilter(expr filter.Expression) *qdrant.Filter {
	if expr.IsEmpty() {
		return nil
	}
	return &qdrant.Filter{
		Must:    conditions(expr.Must()),
		Should:  conditions(expr.Should()),
		MustNot: conditions(expr.MustNot()),
	}
}

func conditions(in []filter.Condition) []*qdrant.Condition {
	if len(in) == 0 {
		return nil
	}
	out := make([]*qdrant.Condition, 0, len(in))
	for _, c := range in {
		if c.IsRange() {
			r := c.Range()
			out = append(out, qdrant.NewRange(c.Key(), &qdrant.Range{
				Gt:  r.GT(),
				Gte: r.GTE(),
				Lt:  r.LT(),
				Lte: r.LTE(),
			}))
			continue
		}
		out = append(out, qdrant.NewMatch(c.Key(), c.Match()))
	}
	return out
}
