package search

import (
	"context"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/index"
)

// SystemReader resolves a terminology system to its index handle.
type SystemReader interface {
	Get(name string) (*index.System, error)
}

// Embedder vectorizes the raw query for the stage-3 rerank. It must be the
// same provider that produced the stored embedding tables.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
