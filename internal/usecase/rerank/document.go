package rerank

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// charsPerToken approximates the tokenizer ratio for Dutch legal text.
const charsPerToken = 4

const ellipsis = "…"

// buildDocument renders a candidate as provider input: the truncated excerpt
// followed by the metadata lines that are present.
func buildDocument(r *caselaw.ScoredResult, maxTokens int) string {
	doc := truncateRunes(r.Excerpt(), maxTokens*charsPerToken)

	var meta []string
	if r.CourtType != "" && r.CourtType != caselaw.CourtUnknown {
		meta = append(meta, "Court tier: "+string(r.CourtType))
	}
	if v := strings.TrimSpace(r.Metadata.LegalArea); v != "" {
		meta = append(meta, "Legal area: "+v)
	}
	if y := r.Metadata.Year(); y > 0 {
		meta = append(meta, "Year: "+strconv.Itoa(y))
	}
	if v := strings.TrimSpace(r.Metadata.ECLI); v != "" {
		meta = append(meta, "ECLI: "+v)
	}

	if len(meta) == 0 {
		return doc
	}
	if doc == "" {
		return strings.Join(meta, "\n")
	}
	return doc + "\n\n" + strings.Join(meta, "\n")
}

// truncateRunes cuts s to at most limit runes, ending in an ellipsis when cut.
// A non-positive limit leaves s unchanged.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	n := 0
	for i := range s {
		if n == keep {
			return strings.TrimRightFunc(s[:i], isSpace) + ellipsis
		}
		n++
	}
	return s
}

func isSpace(r rune) bool { return r == ' ' || r == '\n' || r == '\t' || r == '\r' }
