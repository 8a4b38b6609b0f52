// Package codemap embeds the terminology search core in-process: the same
// cascading pipeline, autocomplete chain, and selection-history ranking the
// HTTP server exposes, without running a server.
package codemap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/db"
	dbRedis "github.com/codemapper/codemap/internal/db/redis"
	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/index"
	"github.com/codemapper/codemap/internal/repository/indexfile"
	selectionrepo "github.com/codemapper/codemap/internal/repository/selection"
	openaiTransport "github.com/codemapper/codemap/internal/transport/openai"
	autocompleteuc "github.com/codemapper/codemap/internal/usecase/autocomplete"
	rerankuc "github.com/codemapper/codemap/internal/usecase/rerank"
	searchuc "github.com/codemapper/codemap/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "codemap:"
)

// Embedder converts text to vector embeddings. It must be the provider that
// produced the loaded systems' embedding tables.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Candidate is one search or autocomplete hit.
type Candidate struct {
	Code       string
	Term       string
	English    string
	Definition string

	// Score is the raw retrieval score; FinalScore includes the
	// selection-history boost when ranking ran.
	Score          float64
	FinalScore     float64
	Boost          float64
	SelectionCount int
	Stage          string
}

// Suggestion is one typo-correction entry.
type Suggestion struct {
	Candidate Candidate
	Distance  int
	Message   string
}

// AutocompleteResult is the outcome of the match chain.
type AutocompleteResult struct {
	Results     []Candidate
	Suggestions []Suggestion
	HasFuzzy    bool
}

// Client is the in-process search core.
type Client struct {
	store      db.Store
	selections *selectionrepo.Store
	registry   *index.Registry
	search     *searchuc.Service
	complete   *autocompleteuc.Service
	rerank     *rerankuc.Engine
	logger     *zap.Logger
}

// New loads the configured terminology systems and wires the search core.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(cfg.systems) == 0 {
		return nil, errors.New("codemap: at least one terminology system required (use WithSystem)")
	}

	loader := indexfile.New(logger)
	systems := make([]*index.System, 0, len(cfg.systems))
	for name, file := range cfg.systems {
		sys, err := loader.Load(name, file.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("codemap: load system %s: %w", name, err)
		}
		if file.TopK > 0 {
			sys.TopK = file.TopK
		}
		sys.IncludeEnglish = file.IncludeEnglish
		systems = append(systems, sys)
	}
	registry := index.NewRegistry(systems...)

	embedder := buildEmbedder(cfg, logger)

	c := &Client{
		registry: registry,
		search:   searchuc.New(registry, embedder, logger),
		complete: autocompleteuc.New(registry, logger),
		rerank:   rerankuc.New(logger),
		logger:   logger,
	}

	if len(cfg.redisAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("codemap: create redis store: %w", err)
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("codemap: database not ready: %w", err)
		}
		c.store = store
		c.selections = selectionrepo.New(store, cfg.keyPrefix)
	}

	return c, nil
}

func buildEmbedder(cfg *clientConfig, logger *zap.Logger) domain.Embedder {
	if cfg.embedder != nil {
		return &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.openAIModel != "" {
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.openAIModel,
			Dimensions: cfg.openAIDims,
			Provider:   "openai",
			Logger:     logger,
		})
	}
	return &noopEmbedder{}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks selection-history database connectivity. A client without a
// database has nothing to ping.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Systems returns the loaded terminology system names.
func (c *Client) Systems() []string {
	return c.registry.Names()
}

// Search maps a free-text description to ranked catalog candidates. Selection
// history boosts the ranking when a database is connected.
func (c *Client) Search(ctx context.Context, system, query string) ([]Candidate, error) {
	candidates, err := c.search.Search(ctx, system, query)
	if err != nil {
		return nil, fmt.Errorf("codemap: search: %w", err)
	}

	var counts map[string]int
	if c.selections != nil {
		counts, err = c.selections.Counts(ctx, system)
		if err != nil {
			c.logger.Warn("selection counts unavailable, ranking without history", zap.Error(err))
			counts = nil
		}
	}

	return fromCandidates(c.rerank.Rerank(candidates, counts)), nil
}

// Autocomplete runs the typo-tolerant match chain.
func (c *Client) Autocomplete(ctx context.Context, system, query string) (AutocompleteResult, error) {
	resp, err := c.complete.Autocomplete(ctx, system, query)
	if err != nil {
		return AutocompleteResult{}, fmt.Errorf("codemap: autocomplete: %w", err)
	}

	out := AutocompleteResult{
		Results:  fromCandidates(resp.Results),
		HasFuzzy: resp.HasFuzzy,
	}
	for _, s := range resp.FuzzySuggestions {
		out.Suggestions = append(out.Suggestions, Suggestion{
			Candidate: fromCandidate(s.Candidate),
			Distance:  s.Distance,
			Message:   s.Message,
		})
	}
	return out, nil
}

// RecordSelection increments the selection counter for a code and returns the
// new count. Requires WithRedis.
func (c *Client) RecordSelection(ctx context.Context, system, code string) (int, error) {
	if c.selections == nil {
		return 0, errors.New("codemap: selection history not configured (use WithRedis)")
	}
	count, err := c.selections.Record(ctx, system, code)
	if err != nil {
		return 0, fmt.Errorf("codemap: record selection: %w", err)
	}
	return count, nil
}

func fromCandidate(c domain.Candidate) Candidate {
	return Candidate{
		Code:           c.Code,
		Term:           c.Term,
		English:        c.English,
		Definition:     c.Definition,
		Score:          c.Score,
		FinalScore:     c.EffectiveScore(),
		Boost:          c.BoostApplied,
		SelectionCount: c.SelectionCount,
		Stage:          string(c.Stage),
	}
}

func fromCandidates(cs []domain.Candidate) []Candidate {
	out := make([]Candidate, len(cs))
	for i, c := range cs {
		out[i] = fromCandidate(c)
	}
	return out
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"codemap: embedder not configured (use WithEmbedder or WithOpenAI)",
	)
}
