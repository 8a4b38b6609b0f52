package health

import "context"

// DBPinger checks selection-history database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// SystemLister reports the terminology systems loaded in memory.
type SystemLister interface {
	Names() []string
}
