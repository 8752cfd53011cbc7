// Package rerankcache holds reranked result lists keyed by the rerank cache key.
package rerankcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

type entry struct {
	results  []caselaw.ScoredResult
	storedAt time.Time
}

// Memory is a process-local TTL cache. Entries are replaced wholesale and
// expired entries are removed by Sweep; there is no background goroutine.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an in-process cache whose entries live for ttl.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get returns a copy of a fresh entry.
func (m *Memory) Get(_ context.Context, key string) ([]caselaw.ScoredResult, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.expired(e, m.now()) {
		return nil, false
	}
	return caselaw.CloneAll(e.results), true
}

// Set stores a copy of results under key, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key string, results []caselaw.ScoredResult) error {
	e := entry{results: caselaw.CloneAll(results), storedAt: m.now()}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired entry.
func (m *Memory) Sweep(_ context.Context) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, k)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return now.Sub(e.storedAt) > m.ttl
}
