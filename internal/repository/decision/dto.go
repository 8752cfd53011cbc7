package decision

import (
	"strconv"

	"github.com/kailas-cloud/jurisrank/internal/db/valkey"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// Hash field names. Metadata fields reuse the JSON names of caselaw.Metadata.
const (
	fieldText     = "text"
	fieldVector   = "vector"
	fieldYear     = "decision_year"
	fieldECLI     = "ecli"
	fieldTitle    = "title"
	fieldCourt    = "court"
	fieldArea     = "legal_area"
	fieldDate     = "decision_date"
	fieldProc     = "procedure"
	fieldSummary  = "summary"
	fieldFacts    = "facts"
	fieldDispute  = "dispute"
	fieldDecision = "decision"
	fieldReason   = "reasoning"
)

// returnFields is everything a search hit needs except the vector blob.
var returnFields = []string{
	fieldText, fieldECLI, fieldTitle, fieldCourt, fieldArea, fieldDate, fieldProc,
	fieldSummary, fieldFacts, fieldDispute, fieldDecision, fieldReason,
}

// buildHashFields flattens a decision and its vector into HSET fields.
// Absent metadata fields are not written so they cannot match tag filters.
func buildHashFields(d *caselaw.Decision, vec []float32) map[string]string {
	m := map[string]string{
		fieldText:   d.Text,
		fieldVector: valkey.VectorToBytes(vec),
	}
	md := d.Metadata
	for k, v := range map[string]string{
		fieldECLI:     md.ECLI,
		fieldTitle:    md.Title,
		fieldCourt:    md.Court,
		fieldArea:     md.LegalArea,
		fieldDate:     md.DecisionDate,
		fieldProc:     md.Procedure,
		fieldSummary:  md.Summary,
		fieldFacts:    md.Facts,
		fieldDispute:  md.Dispute,
		fieldDecision: md.Decision,
		fieldReason:   md.Reasoning,
	} {
		if v != "" {
			m[k] = v
		}
	}
	if y := md.Year(); y > 0 {
		m[fieldYear] = strconv.Itoa(y)
	}
	return m
}

// parseHit rebuilds a search result from returned hash fields.
func parseHit(id string, score float64, f map[string]string) caselaw.SearchResult {
	return caselaw.SearchResult{
		ID:    id,
		Score: caselaw.Clamp(score, 0, 1),
		Text:  f[fieldText],
		Metadata: caselaw.Metadata{
			ECLI:         f[fieldECLI],
			Title:        f[fieldTitle],
			Court:        f[fieldCourt],
			LegalArea:    f[fieldArea],
			DecisionDate: f[fieldDate],
			Procedure:    f[fieldProc],
			Summary:      f[fieldSummary],
			Facts:        f[fieldFacts],
			Dispute:      f[fieldDispute],
			Decision:     f[fieldDecision],
			Reasoning:    f[fieldReason],
		},
	}
}
