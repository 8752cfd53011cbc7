package domain

import "context"

type usageKey struct{}

// Rerank outcomes recorded on SearchUsage and used as metric labels.
const (
	RerankSuccess  = "success"
	RerankFallback = "fallback"
	RerankCacheHit = "cache_hit"
	RerankSkipped  = "skipped"
)

// SearchUsage collects per-request cost information.
// The handler puts a pointer into the context, the services fill it in,
// and the handler turns it into response headers.
type SearchUsage struct {
	EmbeddingTokens int
	Rerank          string
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *SearchUsage) {
	u := &SearchUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector. Returns nil if not set.
func UsageFromContext(ctx context.Context) *SearchUsage {
	u, _ := ctx.Value(usageKey{}).(*SearchUsage)
	return u
}

// AddTokens records consumed embedding tokens. Safe on a nil receiver.
func (u *SearchUsage) AddTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
	}
}

// SetRerank records how the rerank step ended. Safe on a nil receiver.
func (u *SearchUsage) SetRerank(outcome string) {
	if u != nil {
		u.Rerank = outcome
	}
}
