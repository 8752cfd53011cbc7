package scoring

import (
	"strings"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// countKeywords returns how many keywords occur in the narrative metadata fields.
// Matching is case-insensitive substring containment.
func countKeywords(md *caselaw.Metadata, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(strings.Join(md.Narrative(), " "))
	if strings.TrimSpace(haystack) == "" {
		return 0
	}

	n := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			n++
		}
	}
	return n
}
