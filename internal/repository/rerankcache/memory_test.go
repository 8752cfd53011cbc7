package rerankcache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_HitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(10*time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	if err := c.Set(ctx, "k", testResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(10 * time.Minute)

	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit at exactly TTL age")
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("unexpected results %+v", got)
	}
}

func TestMemory_ExpiredIsMissAndSwept(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Set(ctx, "old", testResults())
	clock.Advance(2 * time.Minute)
	_ = c.Set(ctx, "new", testResults())

	if _, ok := c.Get(ctx, "old"); ok {
		t.Error("expired entry must not be returned")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() before sweep = %d, want 2", c.Len())
	}
	c.Sweep(ctx)
	if c.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "new"); !ok {
		t.Error("fresh entry must survive the sweep")
	}
}

func TestMemory_CopiesOnReadAndWrite(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	in := testResults()
	_ = c.Set(ctx, "k", in)
	in[0].ID = "mutated"
	*in[0].RerankScore = 0

	got, _ := c.Get(ctx, "k")
	if got[0].ID != "a" || *got[0].RerankScore != 0.9 {
		t.Fatalf("cache aliased caller input: %+v", got[0])
	}

	got[1].AdjustedScore = 0
	again, _ := c.Get(ctx, "k")
	if again[1].AdjustedScore != 0.7 {
		t.Error("cache aliased returned slice")
	}
}

func TestMemory_Overwrite(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "k", testResults())
	_ = c.Set(ctx, "k", testResults()[:1])

	got, _ := c.Get(ctx, "k")
	if len(got) != 1 {
		t.Errorf("expected wholesale replacement, got %d results", len(got))
	}
}

func TestMemory_Concurrent(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = c.Set(ctx, key, testResults())
			c.Sweep(ctx)
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}
