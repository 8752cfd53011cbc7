// Package decision stores decisions as Valkey hashes under an HNSW FT index
// and serves KNN queries over them.
package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/jurisrank/internal/db"
	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

var (
	keyPrefix = domain.KeyPrefix + "decision:"
	indexName = domain.KeyPrefix + "decisions:idx"
)

// store is the consumer interface for the decision index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Ping(ctx context.Context) error
}

// HNSWConfig holds HNSW tuning for the vector field. Zero keeps server defaults.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo is the Valkey-backed vector index.
type Repo struct {
	store      store
	dimensions int
	hnsw       HNSWConfig
}

// New creates a decision repository for vectors of the given dimension.
func New(s store, dimensions int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dimensions: dimensions, hnsw: hnsw}
}

// Backend names the index implementation for metrics and logs.
func (r *Repo) Backend() string { return "valkey" }

// EnsureIndex creates the FT index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.dimensions, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func buildIndex(dimensions int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName).
		Prefix(keyPrefix).
		Tag(fieldCourt).
		Tag(fieldArea).
		Tag(fieldProc).
		Numeric(fieldYear).
		VectorHNSW(fieldVector, dimensions, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}

// Search returns the topK nearest decisions matching the filter.
func (r *Repo) Search(
	ctx context.Context, vector []float32, f filter.Expression, topK int,
) ([]caselaw.SearchResult, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		Filters:      f,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	out := make([]caselaw.SearchResult, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, parseHit(strings.TrimPrefix(e.Key, keyPrefix), e.Score, e.Fields))
	}
	return out, nil
}

// Upsert writes the decision hash; the FT index picks it up by prefix.
func (r *Repo) Upsert(ctx context.Context, d caselaw.Decision, vector []float32) error {
	if d.ID == "" {
		return fmt.Errorf("decision id is required")
	}
	if len(vector) != r.dimensions {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(vector), r.dimensions)
	}
	if err := r.store.HSet(ctx, keyPrefix+d.ID, buildHashFields(&d, vector)); err != nil {
		return fmt.Errorf("upsert decision %s: %w", d.ID, err)
	}
	return nil
}

// Delete removes a decision. Deleting a missing decision is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("decision id is required")
	}
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete decision %s: %w", id, err)
	}
	return nil
}

// HealthCheck pings the store.
func (r *Repo) HealthCheck(ctx context.Context) error {
	return r.store.Ping(ctx)
}
