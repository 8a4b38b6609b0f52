// Package autocomplete implements the typo-tolerant fallback chain used by
// incremental-search UIs. The chain is an explicit ordered list of match
// strategies: prefix, substring, and fuzzy typo correction. It is independent
// of the cascading pipeline and shares only the text primitives with it.
package autocomplete

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/domain/text"
	"github.com/codemapper/codemap/internal/index"
	"github.com/codemapper/codemap/internal/metrics"
)

// Chain limits.
const (
	maxResults       = 20
	minQueryLen      = 2
	minFuzzyQueryLen = 3
	maxEditDistance  = 2
	maxSuggestions   = 5
	maxFuzzyResults  = 10
)

// SystemReader resolves a terminology system to its index handle.
type SystemReader interface {
	Get(name string) (*index.System, error)
}

// Suggestion is one "did you mean" entry from the fuzzy stage.
type Suggestion struct {
	Candidate domain.Candidate
	Distance  int
	Message   string
}

// Response is the well-formed autocomplete result. Results is never nil.
type Response struct {
	Results          []domain.Candidate
	FuzzySuggestions []Suggestion
	HasFuzzy         bool
}

// Empty reports whether no local stage produced anything; callers use it as
// the trigger condition for the external web-search fallback.
func (r Response) Empty() bool { return len(r.Results) == 0 }

// Service evaluates the autocomplete chain against one registry of systems.
type Service struct {
	systems SystemReader
	logger  *zap.Logger
	chain   []strategy
}

// New creates an autocomplete service.
func New(systems SystemReader, logger *zap.Logger) *Service {
	s := &Service{systems: systems, logger: logger}
	s.chain = []strategy{
		{
			name:  "prefix",
			admit: func(*chainState) bool { return true },
			run:   prefixMatch,
		},
		{
			name:  "substring",
			admit: func(st *chainState) bool { return len(st.results) < maxResults },
			run:   substringMatch,
		},
		{
			name: "fuzzy",
			admit: func(st *chainState) bool {
				return len(st.results) == 0 && len(st.query) >= minFuzzyQueryLen
			},
			run: fuzzyMatch,
		},
	}
	return s
}

// chainState accumulates results while the strategy chain runs.
type chainState struct {
	query       string // normalized
	results     []domain.Candidate
	seen        map[string]bool
	suggestions []Suggestion
	source      string
}

// strategy is one stage of the autocomplete chain. admit decides whether the
// stage runs given what earlier stages produced.
type strategy struct {
	name  string
	admit func(st *chainState) bool
	run   func(sys *index.System, st *chainState)
}

// Autocomplete runs the match chain for a query. The response is always
// well-formed, even when every stage comes up empty.
func (s *Service) Autocomplete(_ context.Context, system, query string) (Response, error) {
	sys, err := s.systems.Get(system)
	if err != nil {
		return Response{}, fmt.Errorf("get system: %w", err)
	}

	st := &chainState{
		query:   text.Normalize(query),
		results: []domain.Candidate{},
		seen:    make(map[string]bool),
		source:  "empty",
	}

	if len(st.query) >= minQueryLen {
		for _, stage := range s.chain {
			if !stage.admit(st) {
				continue
			}
			before := len(st.results)
			stage.run(sys, st)
			if len(st.results) > before && st.source == "empty" {
				st.source = stage.name
			}
		}
	}

	if len(st.results) > maxResults {
		st.results = st.results[:maxResults]
	}

	metrics.AutocompleteRequestsTotal.WithLabelValues(system, st.source).Inc()
	s.logger.Debug("autocomplete",
		zap.String("system", system),
		zap.String("source", st.source),
		zap.Int("results", len(st.results)),
	)

	return Response{
		Results:          st.results,
		FuzzySuggestions: st.suggestions,
		HasFuzzy:         len(st.suggestions) > 0,
	}, nil
}
