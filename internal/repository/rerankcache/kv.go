package rerankcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/db"
	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

var keyPrefix = domain.KeyPrefix + "rerank:"

// kvStore is the consumer interface for the shared cache (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type kvEntry struct {
	StoredAt time.Time              `json:"stored_at"`
	Results  []caselaw.ScoredResult `json:"results"`
}

// KV shares reranked lists across replicas through Valkey. Expiry is the key
// TTL, so Sweep has nothing to do.
type KV struct {
	store  kvStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewKV creates a Valkey-backed cache.
func NewKV(s kvStore, ttl time.Duration, logger *zap.Logger) *KV {
	return &KV{store: s, ttl: ttl, logger: logger}
}

// Get decodes a cached list. Store and decode failures count as a miss.
func (c *KV) Get(ctx context.Context, key string) ([]caselaw.ScoredResult, bool) {
	data, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read rerank cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var e kvEntry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to decode rerank cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return e.Results, true
}

// Set encodes results and stores them with the cache TTL.
func (c *KV) Set(ctx context.Context, key string, results []caselaw.ScoredResult) error {
	data, err := json.Marshal(kvEntry{StoredAt: time.Now().UTC(), Results: results})
	if err != nil {
		return fmt.Errorf("encode rerank cache entry: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, keyPrefix+key, data, c.ttl); err != nil {
		return fmt.Errorf("write rerank cache: %w", err)
	}
	return nil
}

// Sweep is a no-op; Valkey expires keys itself.
func (c *KV) Sweep(context.Context) {}
