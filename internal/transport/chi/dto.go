package chi

import (
	"fmt"

	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUpstreamError    ErrorCode = "upstream_error"
	CodeConfigError      ErrorCode = "config_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /v1/cases/{caseID}/search.
type SearchRequest struct {
	Query          string      `json:"query"`
	TopK           int         `json:"top_k,omitempty"`
	ScoreThreshold float64     `json:"score_threshold,omitempty"`
	Keywords       []string    `json:"keywords,omitempty"`
	Filters        *FilterBody `json:"filters,omitempty"`
}

// FilterBody holds the boolean filter groups.
type FilterBody struct {
	Must    []ConditionBody `json:"must,omitempty"`
	Should  []ConditionBody `json:"should,omitempty"`
	MustNot []ConditionBody `json:"must_not,omitempty"`
}

// ConditionBody is either a tag match or a numeric range on Key.
type ConditionBody struct {
	Key   string     `json:"key"`
	Match *string    `json:"match,omitempty"`
	Range *RangeBody `json:"range,omitempty"`
}

// RangeBody holds numeric bounds.
type RangeBody struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// SearchResponse lists ranked decisions.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}

// SearchResultItem is one ranked decision.
type SearchResultItem struct {
	ID              string                 `json:"id"`
	Score           float64                `json:"score"`
	AdjustedScore   float64                `json:"adjusted_score"`
	CourtType       caselaw.CourtType      `json:"court_type"`
	Breakdown       caselaw.ScoreBreakdown `json:"score_breakdown"`
	RerankScore     *float64               `json:"rerank_score,omitempty"`
	RerankRationale string                 `json:"rerank_rationale,omitempty"`
	Metadata        caselaw.Metadata       `json:"metadata"`
	Text            string                 `json:"text,omitempty"`
}

// UpsertDecisionRequest is the body of PUT /v1/decisions/{id}.
type UpsertDecisionRequest struct {
	Text     string           `json:"text"`
	Metadata caselaw.Metadata `json:"metadata"`
}

// DecisionResponse acknowledges an upsert.
type DecisionResponse struct {
	ID string `json:"id"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func queryFromRequest(req *SearchRequest) (query.Query, error) {
	expr, err := filtersFromBody(req.Filters)
	if err != nil {
		return query.Query{}, err
	}
	q, err := query.New(req.Query, expr, req.TopK, req.ScoreThreshold, req.Keywords)
	if err != nil {
		return query.Query{}, fmt.Errorf("query: %w", err)
	}
	return q, nil
}

func filtersFromBody(fb *FilterBody) (filter.Expression, error) {
	if fb == nil {
		return filter.Expression{}, nil
	}
	must, err := conditionsFromBody(fb.Must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("must: %w", err)
	}
	should, err := conditionsFromBody(fb.Should)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("should: %w", err)
	}
	mustNot, err := conditionsFromBody(fb.MustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("must_not: %w", err)
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filters: %w", err)
	}
	return expr, nil
}

func conditionsFromBody(in []ConditionBody) ([]filter.Condition, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(in))
	for i, c := range in {
		cond, err := conditionFromBody(c)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromBody(c ConditionBody) (filter.Condition, error) {
	switch {
	case c.Match != nil && c.Range != nil:
		return filter.Condition{}, fmt.Errorf("condition on %q sets both match and range", c.Key)
	case c.Match != nil:
		return filter.NewMatch(c.Key, *c.Match)
	case c.Range != nil:
		r, err := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range on %q: %w", c.Key, err)
		}
		return filter.NewRange(c.Key, r)
	default:
		return filter.Condition{}, fmt.Errorf("condition on %q needs match or range", c.Key)
	}
}

func resultToItem(r *caselaw.ScoredResult) SearchResultItem {
	return SearchResultItem{
		ID:              r.ID,
		Score:           r.Score,
		AdjustedScore:   r.AdjustedScore,
		CourtType:       r.CourtType,
		Breakdown:       r.Breakdown,
		RerankScore:     r.RerankScore,
		RerankRationale: r.RerankRationale,
		Metadata:        r.Metadata,
		Text:            r.Text,
	}
}

// BatchUpsertRequest is the body of POST /v1/decisions/batch.
type BatchUpsertRequest struct {
	Decisions []BatchDecision `json:"decisions"`
}

// BatchDecision is one decision of a batch upsert.
type BatchDecision struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata caselaw.Metadata `json:"metadata"`
}

// BatchDeleteRequest is the body of POST /v1/decisions/batch-delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchResponse reports per-item outcomes.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// BatchResultItem is the outcome for one decision.
type BatchResultItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func batchResponse(results []dombatch.Result) BatchResponse {
	items := make([]BatchResultItem, len(results))
	for i, res := range results {
		items[i] = BatchResultItem{ID: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			items[i].Error = safeDomainMessage(res.Err())
		}
	}
	ok, failed := dombatch.Count(results)
	return BatchResponse{Items: items, Succeeded: ok, Failed: failed}
}
