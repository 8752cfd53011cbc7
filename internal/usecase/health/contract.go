package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks availability of a dependency (vector index, embedding or rerank provider).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
