// Package search implements the cascading retrieval pipeline: BM25 lexical
// scoring over the whole catalog, a weighted-term rerank of the survivors,
// and an embedding-similarity rerank producing the final ordering. Each stage
// only ever narrows the previous stage's candidate set.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/domain/text"
	"github.com/codemapper/codemap/internal/index"
	"github.com/codemapper/codemap/internal/metrics"
)

// Stage cut sizes. Stage 3's cut is per-system (index.System.TopK).
const (
	stage1Keep = 100
	stage2Keep = 60
)

// Service runs the three-stage pipeline against one registry of systems.
type Service struct {
	systems SystemReader
	embed   Embedder
	logger  *zap.Logger
}

// New creates a search service.
func New(systems SystemReader, embed Embedder, logger *zap.Logger) *Service {
	return &Service{systems: systems, embed: embed, logger: logger}
}

// ranked pairs a catalog position with the score of the stage that last
// touched it.
type ranked struct {
	doc   int
	score float64
}

// Search maps a free-text query to the closest catalog entries of a system,
// most relevant first. Output length is at most the system's TopK; every
// returned document survived all three stages. An embedding provider failure
// fails the whole request.
func (s *Service) Search(ctx context.Context, system, query string) ([]domain.Candidate, error) {
	sys, err := s.systems.Get(system)
	if err != nil {
		return nil, fmt.Errorf("get system: %w", err)
	}

	// Degenerate input returns empty before any provider call.
	if len(text.Normalize(query)) < 2 {
		return []domain.Candidate{}, nil
	}

	queryTokens := text.Tokenize(query)
	if sys.Catalog.Len() == 0 || len(queryTokens) == 0 {
		return []domain.Candidate{}, nil
	}

	survivors := s.stageLexical(sys, queryTokens)
	survivors = s.stageVector(sys, queryTokens, survivors)

	final, err := s.stageSemantic(ctx, sys, query, survivors)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(system, "error").Inc()
		return nil, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(system, "success").Inc()

	candidates := make([]domain.Candidate, len(final))
	for i, r := range final {
		candidates[i] = sys.Candidate(r.doc, r.score, domain.StageSemantic)
	}
	return candidates, nil
}

// stageLexical scores every document with BM25 and keeps the top stage1Keep.
// Ties break by catalog insertion order.
func (s *Service) stageLexical(sys *index.System, queryTokens []string) []ranked {
	defer observeStage(sys.Name, "lexical")()

	scores := sys.Lexical.Scores(queryTokens)
	survivors := make([]ranked, len(scores))
	for i, score := range scores {
		survivors[i] = ranked{doc: i, score: score}
	}
	return cut(survivors, stage1Keep)
}

// stageVector reranks the lexical survivors by weighted-term similarity and
// keeps the top stage2Keep. Ties break by stage-1 rank.
func (s *Service) stageVector(sys *index.System, queryTokens []string, survivors []ranked) []ranked {
	defer observeStage(sys.Name, "vector")()

	queryVec := sys.Vocab.Encode(queryTokens)
	rescored := make([]ranked, len(survivors))
	for i, r := range survivors {
		rescored[i] = ranked{doc: r.doc, score: queryVec.Dot(sys.Vocab.Vector(r.doc))}
	}
	return cut(rescored, stage2Keep)
}

// stageSemantic encodes the raw query and reranks the stage-2 survivors by
// cosine similarity against the stored embeddings, keeping the system's TopK.
// Ties break by stage-2 rank.
func (s *Service) stageSemantic(
	ctx context.Context, sys *index.System, query string, survivors []ranked,
) ([]ranked, error) {
	defer observeStage(sys.Name, "semantic")()

	if len(survivors) == 0 {
		return nil, nil
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	rescored := make([]ranked, len(survivors))
	for i, r := range survivors {
		sim, err := sys.Semantic.Cosine(embResult.Embedding, r.doc)
		if err != nil {
			return nil, fmt.Errorf("cosine doc %d: %w", r.doc, err)
		}
		rescored[i] = ranked{doc: r.doc, score: sim}
	}

	topK := sys.TopK
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	s.logger.Debug("semantic rerank",
		zap.String("system", sys.Name),
		zap.Int("survivors", len(survivors)),
		zap.Int("top_k", topK),
	)
	return cut(rescored, topK), nil
}

// cut sorts descending by score and keeps the first n. The stable sort keeps
// the incoming order for ties, which is the previous stage's rank (catalog
// insertion order in stage 1).
func cut(rs []ranked, n int) []ranked {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].score > rs[j].score })
	if len(rs) > n {
		rs = rs[:n]
	}
	return rs
}

// observeStage times one pipeline stage.
func observeStage(system, stage string) func() {
	start := time.Now()
	return func() {
		metrics.SearchStageDuration.WithLabelValues(system, stage).Observe(time.Since(start).Seconds())
	}
}
