package caselaw

import (
	"regexp"
	"strconv"
	"strings"
)

// Metadata describes a prior decision. Every field is optional:
// an empty or whitespace-only value means the field is absent.
type Metadata struct {
	ECLI         string `json:"ecli,omitempty"`
	Title        string `json:"title,omitempty"`
	Court        string `json:"court,omitempty"`
	LegalArea    string `json:"legal_area,omitempty"`
	DecisionDate string `json:"decision_date,omitempty"`
	Procedure    string `json:"procedure,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Facts        string `json:"facts,omitempty"`
	Dispute      string `json:"dispute,omitempty"`
	Decision     string `json:"decision,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
}

var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)

// Year extracts the decision year from DecisionDate ("2019-05-03", "3 mei 2019", ...).
// Returns 0 when no year can be found.
func (m Metadata) Year() int {
	match := yearPattern.FindString(m.DecisionDate)
	if match == "" {
		return 0
	}
	y, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return y
}

// Narrative returns the searchable narrative fields in a fixed order:
// summary, facts, dispute, decision, reasoning, title.
func (m Metadata) Narrative() []string {
	return []string{m.Summary, m.Facts, m.Dispute, m.Decision, m.Reasoning, m.Title}
}

// Merge returns a copy of m where every field present in patch replaces the
// original value. Absent patch fields never erase a known value.
// ECLI identifies the decision and is only filled in when m has none.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m
	if !present(out.ECLI) {
		out.ECLI = pick(out.ECLI, patch.ECLI)
	}
	out.Title = pick(out.Title, patch.Title)
	out.Court = pick(out.Court, patch.Court)
	out.LegalArea = pick(out.LegalArea, patch.LegalArea)
	out.DecisionDate = pick(out.DecisionDate, patch.DecisionDate)
	out.Procedure = pick(out.Procedure, patch.Procedure)
	out.Summary = pick(out.Summary, patch.Summary)
	out.Facts = pick(out.Facts, patch.Facts)
	out.Dispute = pick(out.Dispute, patch.Dispute)
	out.Decision = pick(out.Decision, patch.Decision)
	out.Reasoning = pick(out.Reasoning, patch.Reasoning)
	return out
}

// IsEmpty reports whether no field is present.
func (m Metadata) IsEmpty() bool {
	return !anyPresent(m)
}

func anyPresent(m Metadata) bool {
	for _, v := range []string{
		m.ECLI, m.Title, m.Court, m.LegalArea, m.DecisionDate, m.Procedure,
		m.Summary, m.Facts, m.Dispute, m.Decision, m.Reasoning,
	} {
		if present(v) {
			return true
		}
	}
	return false
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

func pick(original, patch string) string {
	if present(patch) {
		return strings.TrimSpace(patch)
	}
	return original
}
