package qdrantstore

import (
	"context"

	"github.com/qdrant/go-client/qdrant"
)

// fakeClient records requests and returns canned responses.
type fakeClient struct {
	exists      bool
	existsErr   error
	created     *qdrant.CreateCollection
	upserted    *qdrant.UpsertPoints
	deleted     *qdrant.DeletePoints
	queried     *qdrant.QueryPoints
	queryResult []*qdrant.ScoredPoint
	queryErr    error
	healthErr   error
}

func (f *fakeClient) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeClient) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	return nil
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserted = req
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeClient) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.deleted = req
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeClient) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queried = req
	return f.queryResult, f.queryErr
}

func (f *fakeClient) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	return &qdrant.HealthCheckReply{}, f.healthErr
}

var testConfig = Config{Collection: "decisions", Dimensions: 4, M: 16, EFConstruct: 200}
