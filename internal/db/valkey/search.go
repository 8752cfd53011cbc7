package valkey

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/jurisrank/internal/db"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// scoreField is the KNN distance alias valkey-search adds to each hit.
const scoreField = "__vector_score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entry scores are cosine similarity (1 - distance).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	args := []string{q.IndexName, knnQueryString(q.Filters, q.K)}

	if len(q.ReturnFields) > 0 {
		fields := append([]string{scoreField}, q.ReturnFields...)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"PARAMS", "2", "BLOB", VectorToBytes(q.Vector),
		"LIMIT", "0", strconv.Itoa(q.K),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

func knnQueryString(expr filter.Expression, k int) string {
	knn := fmt.Sprintf("[KNN %d @vector $BLOB]", k)
	if f := buildFilter(expr); f != "" {
		return fmt.Sprintf("(%s)=>%s", f, knn)
	}
	return "*=>" + knn
}

// parseKNNResult reads the RESP2 reply [total, key1, fields1, key2, fields2, ...].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if dist, ok := entry.Fields[scoreField]; ok {
			if d, err := strconv.ParseFloat(dist, 64); err == nil {
				entry.Score = 1.0 - d
			}
			delete(entry.Fields, scoreField)
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// buildFilter translates a filter.Expression into an FT.SEARCH pre-filter.
// Must conditions are ANDed, should conditions form one OR group, must_not
// conditions are negated.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string
	for _, cond := range expr.Must() {
		parts = append(parts, buildCondition(cond))
	}
	if should := expr.Should(); len(should) > 0 {
		alts := make([]string, 0, len(should))
		for _, cond := range should {
			alts = append(alts, buildCondition(cond))
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}
	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildCondition(cond))
	}

	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsRange() {
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	return fmt.Sprintf("@%s:{%s}", cond.Key(), tagEscaper.Replace(cond.Match()))
}

func buildNumericFilter(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"

	if r.GT() != nil {
		lo = fmt.Sprintf("(%g", *r.GT())
	} else if r.GTE() != nil {
		lo = fmt.Sprintf("%g", *r.GTE())
	}
	if r.LT() != nil {
		hi = fmt.Sprintf("(%g", *r.LT())
	} else if r.LTE() != nil {
		hi = fmt.Sprintf("%g", *r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, lo, hi)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

// VectorToBytes encodes a FLOAT32 vector as the little-endian blob used by
// HNSW hash fields and FT.SEARCH PARAMS.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
