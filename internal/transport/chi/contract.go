package chi

import (
	"context"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/transport/websearch"
	autocompleteuc "github.com/codemapper/codemap/internal/usecase/autocomplete"
	healthuc "github.com/codemapper/codemap/internal/usecase/health"
)

// Searcher runs the cascading retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, system, query string) ([]domain.Candidate, error)
}

// Autocompleter runs the typo-tolerant match chain.
type Autocompleter interface {
	Autocomplete(ctx context.Context, system, query string) (autocompleteuc.Response, error)
}

// Reranker applies selection-history boosts and locates selections in result lists.
type Reranker interface {
	Rerank(candidates []domain.Candidate, counts map[string]int) []domain.Candidate
	FindRank(selectedCode string, candidates []domain.Candidate) (int, bool)
	FilterLowConfidence(candidates []domain.Candidate, threshold float64) []domain.Candidate
}

// SelectionStore reads and records per-system selection counters.
type SelectionStore interface {
	Counts(ctx context.Context, system string) (map[string]int, error)
	Record(ctx context.Context, system, code string) (int, error)
}

// WebSearcher is the external fallback for empty autocomplete results.
type WebSearcher interface {
	Enabled() bool
	Search(ctx context.Context, query, system string) []websearch.Result
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
