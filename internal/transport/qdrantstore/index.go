// Package qdrantstore serves the decision index from a Qdrant collection.
package qdrantstore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
)

// Payload keys. Metadata keys reuse the JSON names of caselaw.Metadata so
// filter keys mean the same thing on both backends.
const (
	payloadID   = "decision_id"
	payloadText = "text"
	payloadYear = "decision_year"
)

// client is the subset of *qdrant.Client the index uses.
type client interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

// Config describes the target collection.
type Config struct {
	Addr        string // host:port of the gRPC endpoint
	APIKey      string
	Collection  string
	Dimensions  int
	M           int
	EFConstruct int
}

// Index implements the vector index over a single Qdrant collection.
type Index struct {
	client client
	closer func() error
	cfg    Config
}

// New dials Qdrant. Without a port in Addr the default gRPC port 6334 is used.
func New(cfg Config) (*Index, error) {
	host, portStr, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		host, portStr = cfg.Addr, "6334"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant addr: %w", err)
	}

	c, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port, APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Index{client: c, closer: c.Close, cfg: cfg}, nil
}

// NewWithClient wraps an existing client (tests, custom dial options).
func NewWithClient(c client, cfg Config) *Index {
	return &Index{client: c, closer: func() error { return nil }, cfg: cfg}
}

// Backend names the index implementation for metrics and logs.
func (x *Index) Backend() string { return "qdrant" }

// Close releases the gRPC connection.
func (x *Index) Close() error { return x.closer() }

// EnsureIndex creates the collection with cosine distance when missing.
func (x *Index) EnsureIndex(ctx context.Context) error {
	exists, err := x.client.CollectionExists(ctx, x.cfg.Collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}

	req := &qdrant.CreateCollection{
		CollectionName: x.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(x.cfg.Dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	}
	if x.cfg.M > 0 || x.cfg.EFConstruct > 0 {
		hnsw := &qdrant.HnswConfigDiff{}
		if x.cfg.M > 0 {
			hnsw.M = qdrant.PtrOf(uint64(x.cfg.M))
		}
		if x.cfg.EFConstruct > 0 {
			hnsw.EfConstruct = qdrant.PtrOf(uint64(x.cfg.EFConstruct))
		}
		req.HnswConfig = hnsw
	}

	if err := x.client.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Search queries the collection for the topK nearest points.
func (x *Index) Search(
	ctx context.Context, vector []float32, f filter.Expression, topK int,
) ([]caselaw.SearchResult, error) {
	points, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         buildFilter(f),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	out := make([]caselaw.SearchResult, 0, len(points))
	for _, p := range points {
		out = append(out, parsePoint(p))
	}
	return out, nil
}

// Upsert writes one point keyed by a UUID derived from the decision ID.
func (x *Index) Upsert(ctx context.Context, d caselaw.Decision, vector []float32) error {
	if d.ID == "" {
		return fmt.Errorf("decision id is required")
	}
	_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.cfg.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      pointID(d.ID),
			Vectors: qdrant.NewVectors(vector...),
			Payload: buildPayload(&d),
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", d.ID, err)
	}
	return nil
}

// Delete removes the point of a decision.
func (x *Index) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("decision id is required")
	}
	_, err := x.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: x.cfg.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{pointID(id)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete point %s: %w", id, err)
	}
	return nil
}

// HealthCheck calls the Qdrant health endpoint.
func (x *Index) HealthCheck(ctx context.Context) error {
	if _, err := x.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health: %w", err)
	}
	return nil
}

// pointID maps an arbitrary decision ID (an ECLI, a chunk id) onto a stable UUID.
func pointID(id string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String())
}

func buildPayload(d *caselaw.Decision) map[string]*qdrant.Value {
	p := map[string]*qdrant.Value{
		payloadID:   qdrant.NewValueString(d.ID),
		payloadText: qdrant.NewValueString(d.Text),
	}
	md := d.Metadata
	for k, v := range map[string]string{
		"ecli":          md.ECLI,
		"title":         md.Title,
		"court":         md.Court,
		"legal_area":    md.LegalArea,
		"decision_date": md.DecisionDate,
		"procedure":     md.Procedure,
		"summary":       md.Summary,
		"facts":         md.Facts,
		"dispute":       md.Dispute,
		"decision":      md.Decision,
		"reasoning":     md.Reasoning,
	} {
		if v != "" {
			p[k] = qdrant.NewValueString(v)
		}
	}
	if y := md.Year(); y > 0 {
		p[payloadYear] = qdrant.NewValueInt(int64(y))
	}
	return p
}

func parsePoint(p *qdrant.ScoredPoint) caselaw.SearchResult {
	str := func(k string) string {
		if v, ok := p.GetPayload()[k]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	id := str(payloadID)
	if id == "" {
		id = p.GetId().GetUuid()
	}
	return caselaw.SearchResult{
		ID:    id,
		Score: caselaw.Clamp(float64(p.GetScore()), 0, 1),
		Text:  str(payloadText),
		Metadata: caselaw.Metadata{
			ECLI:         str("ecli"),
			Title:        str("title"),
			Court:        str("court"),
			LegalArea:    str("legal_area"),
			DecisionDate: str("decision_date"),
			Procedure:    str("procedure"),
			Summary:      str("summary"),
			Facts:        str("facts"),
			Dispute:      str("dispute"),
			Decision:     str("decision"),
			Reasoning:    str("reasoning"),
		},
	}
}
