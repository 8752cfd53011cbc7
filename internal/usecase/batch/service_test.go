package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

// --- Mocks ---

type mockWriter struct {
	upsertFn    func(d caselaw.Decision) error
	deleteFn    func(id string) error
	upsertCalls int
	deleteCalls int
}

func (m *mockWriter) Upsert(_ context.Context, d caselaw.Decision) error {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(d)
	}
	return nil
}

func (m *mockWriter) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func decisions(ids ...string) []caselaw.Decision {
	out := make([]caselaw.Decision, len(ids))
	for i, id := range ids {
		out[i] = caselaw.Decision{ID: id, Text: "tekst " + id}
	}
	return out
}

func statuses(results []dombatch.Result) string {
	s := ""
	for _, r := range results {
		if r.Status() == dombatch.StatusOK {
			s += "+"
		} else {
			s += "-"
		}
	}
	return s
}

func TestUpsert_AllOK(t *testing.T) {
	w := &mockWriter{}
	results := New(w).Upsert(context.Background(), decisions("a", "b", "c"))

	if got := statuses(results); got != "+++" {
		t.Errorf("statuses = %s", got)
	}
	if w.upsertCalls != 3 {
		t.Errorf("upsert calls = %d", w.upsertCalls)
	}
	if results[1].ID() != "b" {
		t.Errorf("result order not preserved: %s", results[1].ID())
	}
}

func TestUpsert_Oversize(t *testing.T) {
	w := &mockWriter{}
	results := New(w).WithMaxBatchSize(2).Upsert(context.Background(), decisions("a", "b", "c"))

	if got := statuses(results); got != "---" {
		t.Errorf("statuses = %s", got)
	}
	if !errors.Is(results[0].Err(), domain.ErrInvalidDecision) {
		t.Errorf("expected ErrInvalidDecision, got %v", results[0].Err())
	}
	if w.upsertCalls != 0 {
		t.Errorf("nothing should be written, got %d calls", w.upsertCalls)
	}
}

func TestUpsert_PerItemError(t *testing.T) {
	w := &mockWriter{upsertFn: func(d caselaw.Decision) error {
		if d.ID == "b" {
			return domain.NewUpstreamError(domain.ServiceVectorIndex, errors.New("timeout"))
		}
		return nil
	}}
	results := New(w).Upsert(context.Background(), decisions("a", "b", "c"))

	if got := statuses(results); got != "+-+" {
		t.Errorf("index failures should not cascade, statuses = %s", got)
	}
}

func TestUpsert_CascadeOnEmbeddingFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"embedding upstream", domain.NewUpstreamError(domain.ServiceEmbedding, errors.New("503"))},
		{"config", domain.NewConfigError("embedding.api_key", "is required")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{upsertFn: func(d caselaw.Decision) error {
				if d.ID == "b" {
					return tt.err
				}
				return nil
			}}
			results := New(w).Upsert(context.Background(), decisions("a", "b", "c", "d"))

			if got := statuses(results); got != "+---" {
				t.Errorf("statuses = %s", got)
			}
			if w.upsertCalls != 2 {
				t.Errorf("upsert calls = %d, want 2", w.upsertCalls)
			}
			if !errors.Is(results[3].Err(), tt.err) {
				t.Errorf("skipped item should carry the cause, got %v", results[3].Err())
			}
		})
	}
}

func TestUpsert_DuplicateIDs(t *testing.T) {
	w := &mockWriter{}
	results := New(w).Upsert(context.Background(), decisions("a", "b", "a"))

	if got := statuses(results); got != "++-" {
		t.Errorf("statuses = %s", got)
	}
	if !errors.Is(results[2].Err(), domain.ErrInvalidDecision) {
		t.Errorf("expected ErrInvalidDecision, got %v", results[2].Err())
	}
}

func TestDelete(t *testing.T) {
	w := &mockWriter{deleteFn: func(id string) error {
		if id == "b" {
			return fmt.Errorf("%w: id is required", domain.ErrInvalidDecision)
		}
		return nil
	}}
	results := New(w).Delete(context.Background(), []string{"a", "b", "c"})

	if got := statuses(results); got != "+-+" {
		t.Errorf("statuses = %s", got)
	}
	if !errors.Is(results[1].Err(), domain.ErrInvalidDecision) {
		t.Errorf("error not wrapped: %v", results[1].Err())
	}
}

func TestDelete_Oversize(t *testing.T) {
	w := &mockWriter{}
	results := New(w).WithMaxBatchSize(1).Delete(context.Background(), []string{"a", "b"})

	if got := statuses(results); got != "--" {
		t.Errorf("statuses = %s", got)
	}
	if w.deleteCalls != 0 {
		t.Errorf("delete calls = %d", w.deleteCalls)
	}
}

func TestWithMaxBatchSize_IgnoresNonPositive(t *testing.T) {
	s := New(&mockWriter{}).WithMaxBatchSize(0)
	if s.MaxBatchSize() != MaxBatchSize {
		t.Errorf("MaxBatchSize() = %d", s.MaxBatchSize())
	}
}
