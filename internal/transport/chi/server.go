// Package chi is the HTTP API surface: search, autocomplete, selection
// feedback, health, and metrics routes on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/metrics"
	"github.com/codemapper/codemap/internal/transport/websearch"
	healthuc "github.com/codemapper/codemap/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the terminology search core over HTTP.
type Server struct {
	search        Searcher
	autocomplete  Autocompleter
	rerank        Reranker
	selections    SelectionStore
	web           WebSearcher
	refiner       domain.Refiner
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. web and refiner may be nil; the
// corresponding features are then disabled.
func NewServer(
	search Searcher,
	autocomplete Autocompleter,
	rerank Reranker,
	selections SelectionStore,
	web WebSearcher,
	refiner domain.Refiner,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		autocomplete: autocomplete,
		rerank:       rerank,
		selections:   selections,
		web:          web,
		refiner:      refiner,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSystemNotFound, http.StatusNotFound, "system_not_found"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrEmbeddingDimMismatch, http.StatusInternalServerError, "index_error"),
		sentinelHandler(domain.ErrIndexMismatch, http.StatusInternalServerError, "index_error"),
	}
	return s
}

// Routes builds the router. Middlewares are attached by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/v1/systems/{system}", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/autocomplete", s.handleAutocomplete)
		r.Post("/selections", s.handleRecordSelection)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// candidateDTO is the wire shape of one result.
type candidateDTO struct {
	Code           string  `json:"code"`
	Term           string  `json:"term"`
	English        string  `json:"english,omitempty"`
	Definition     string  `json:"definition,omitempty"`
	Score          float64 `json:"score"`
	FinalScore     float64 `json:"final_score"`
	Boost          float64 `json:"boost,omitempty"`
	SelectionCount int     `json:"selection_count,omitempty"`
	Stage          string  `json:"stage"`
}

type searchResponse struct {
	System  string         `json:"system"`
	Query   string         `json:"query"`
	Results []candidateDTO `json:"results"`
	Best    *candidateDTO  `json:"best,omitempty"`
}

type suggestionDTO struct {
	Candidate candidateDTO `json:"candidate"`
	Distance  int          `json:"distance"`
	Message   string       `json:"message"`
}

type autocompleteResponse struct {
	System      string             `json:"system"`
	Query       string             `json:"query"`
	Results     []candidateDTO     `json:"results"`
	Suggestions []suggestionDTO    `json:"suggestions,omitempty"`
	HasFuzzy    bool               `json:"has_fuzzy"`
	WebResults  []websearch.Result `json:"web_results,omitempty"`
}

type selectionRequest struct {
	Code  string `json:"code"`
	Query string `json:"query"`
}

type selectionResponse struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
	Rank  *int   `json:"rank,omitempty"`
}

// handleSearch handles GET /v1/systems/{system}/search?q=...&refine=true.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query parameter q is required")
		return
	}

	candidates, err := s.search.Search(r.Context(), system, query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Selection counters are best effort; ranking proceeds without history
	// when the store is unreachable.
	counts, err := s.selections.Counts(r.Context(), system)
	if err != nil {
		s.logger.Warn("selection counts unavailable, ranking without history", zap.Error(err))
		counts = nil
	}
	ranked := s.rerank.Rerank(candidates, counts)

	if raw := r.URL.Query().Get("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil || minScore < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "min_score must be a non-negative number")
			return
		}
		ranked = s.rerank.FilterLowConfidence(ranked, minScore)
	}

	resp := searchResponse{
		System:  system,
		Query:   query,
		Results: candidatesToDTO(ranked),
	}

	if s.refiner != nil && r.URL.Query().Get("refine") == "true" && len(ranked) > 0 {
		best, err := s.refiner.Refine(r.Context(), query, ranked)
		if err != nil {
			s.logger.Warn("refine failed", zap.Error(err))
		} else {
			dto := candidateToDTO(best)
			resp.Best = &dto
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleAutocomplete handles GET /v1/systems/{system}/autocomplete?q=...
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	query := r.URL.Query().Get("q")

	result, err := s.autocomplete.Autocomplete(r.Context(), system, query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := autocompleteResponse{
		System:   system,
		Query:    query,
		Results:  candidatesToDTO(result.Results),
		HasFuzzy: result.HasFuzzy,
	}
	for _, sug := range result.FuzzySuggestions {
		resp.Suggestions = append(resp.Suggestions, suggestionDTO{
			Candidate: candidateToDTO(sug.Candidate),
			Distance:  sug.Distance,
			Message:   sug.Message,
		})
	}

	if result.Empty() && s.web != nil && s.web.Enabled() {
		resp.WebResults = s.web.Search(r.Context(), query, system)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRecordSelection handles POST /v1/systems/{system}/selections.
func (s *Server) handleRecordSelection(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "code is required")
		return
	}

	count, err := s.selections.Record(r.Context(), system, req.Code)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	metrics.SelectionsRecordedTotal.WithLabelValues(system).Inc()

	resp := selectionResponse{Code: req.Code, Count: count}

	// When the originating query is known, report where the selection sat in
	// the result list. Best effort; recording already succeeded.
	if req.Query != "" {
		if candidates, err := s.search.Search(r.Context(), system, req.Query); err == nil {
			if rank, ok := s.rerank.FindRank(req.Code, candidates); ok {
				resp.Rank = &rank
				s.logger.Info("selection feedback",
					zap.String("system", system),
					zap.String("code", req.Code),
					zap.Int("rank", rank),
				)
			}
		} else {
			s.logger.Debug("selection rank lookup skipped", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":  report.Status,
		"checks":  report.Checks,
		"systems": report.Systems,
	})
}

func candidateToDTO(c domain.Candidate) candidateDTO {
	return candidateDTO{
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

func candidatesToDTO(cs []domain.Candidate) []candidateDTO {
	out := make([]candidateDTO, len(cs))
	for i, c := range cs {
		out[i] = candidateToDTO(c)
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSystemNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbeddingDimMismatch,
		domain.ErrIndexMismatch,
		domain.ErrNoCandidates,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
