package scoring

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// courtPatterns are checked in order; the first tier with a match wins.
// Phrases match as substrings of the normalized name, abbreviations as whole tokens.
var courtPatterns = []struct {
	tier    caselaw.CourtType
	phrases []string
	abbrevs []string
}{
	{
		tier: caselaw.CourtHR,
		phrases: []string{
			"hoge raad", "raad van state", "centrale raad van beroep",
			"college van beroep voor het bedrijfsleven", "hof van justitie", "europees hof",
		},
		abbrevs: []string{"hr", "rvs", "abrvs", "crvb", "cbb"},
	},
	{
		tier:    caselaw.CourtHof,
		phrases: []string{"gerechtshof"},
		abbrevs: []string{"hof", "gh", "ghams", "ghdha", "gharl", "ghshe"},
	},
	{
		tier:    caselaw.CourtRechtbank,
		phrases: []string{"rechtbank", "kantonrechter", "sector kanton", "kanton"},
		abbrevs: []string{
			"rb", "rbams", "rbdha", "rbrot", "rbmne", "rbnne", "rbobr",
			"rbzwb", "rbgel", "rblim", "rbove", "ktr",
		},
	},
}

var leadingNoise = []string{"ecli:nl:", "de ", "het ", "'t "}

// MapCourtLevel classifies a raw court name or ECLI into a tier.
func MapCourtLevel(raw string) caselaw.CourtType {
	name := normalizeCourt(raw)
	if name == "" {
		return caselaw.CourtUnknown
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(name) {
		tokens[tok] = struct{}{}
	}

	for _, p := range courtPatterns {
		for _, phrase := range p.phrases {
			if strings.Contains(name, phrase) {
				return p.tier
			}
		}
		for _, a := range p.abbrevs {
			if _, ok := tokens[a]; ok {
				return p.tier
			}
		}
	}
	return caselaw.CourtUnknown
}

// normalizeCourt lowercases, strips a leading ECLI country prefix and
// articles, turns punctuation into spaces and collapses whitespace.
func normalizeCourt(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for stripped := true; stripped; {
		stripped = false
		for _, p := range leadingNoise {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
			}
		}
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
