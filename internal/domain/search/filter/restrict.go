package filter

import (
	"fmt"
	"strings"
)

// Restrict builds the common case-law restriction: any of courts, an exact
// legal area and decisions from sinceYear onwards. One court is a must
// condition, several courts form a should group. Zero values are ignored.
func Restrict(courts []string, legalArea string, sinceYear int) (Expression, error) {
	var must, should []Condition

	for _, court := range courts {
		court = strings.TrimSpace(court)
		if court == "" {
			continue
		}
		c, err := NewMatch("court", court)
		if err != nil {
			return Expression{}, err
		}
		should = append(should, c)
	}
	if len(should) == 1 {
		must, should = should, nil
	}

	if legalArea = strings.TrimSpace(legalArea); legalArea != "" {
		c, err := NewMatch("legal_area", legalArea)
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}

	if sinceYear > 0 {
		from := float64(sinceYear)
		r, err := NewRangeFilter(nil, &from, nil, nil)
		if err != nil {
			return Expression{}, err
		}
		c, err := NewRange("decision_year", r)
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}

	expr, err := NewExpression(must, should, nil)
	if err != nil {
		return Expression{}, fmt.Errorf("restrict: %w", err)
	}
	return expr, nil
}
