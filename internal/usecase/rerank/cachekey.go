package rerank

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// CacheKey derives the rerank cache key. Bumping version invalidates every entry.
func CacheKey(version, caseID, query, filterFingerprint, candidates string) string {
	h := sha256.New()
	for i, part := range []string{version, caseID, query, filterFingerprint, candidates} {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CandidateDigest fingerprints the ordered candidate list by id and adjusted
// score, so a different topK, threshold or keyword set never shares an entry.
func CandidateDigest(results []caselaw.ScoredResult) string {
	h := sha256.New()
	for _, r := range results {
		h.Write([]byte(r.ID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(r.AdjustedScore, 'g', -1, 64)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
