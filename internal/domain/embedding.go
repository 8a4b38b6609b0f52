package domain

import "context"

// Embedder is the shared text vectorization contract between layers. The
// provider that encodes queries must be the same one that produced a system's
// stored embedding table.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Refiner picks the single best candidate for a query. It is an optional
// post-processing collaborator; the ranking core never calls it.
type Refiner interface {
	Refine(ctx context.Context, query string, candidates []Candidate) (Candidate, error)
}
