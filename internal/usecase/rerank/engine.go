// Package rerank adjusts candidate ordering using historical human-selection
// counts. The boost is logarithmic and capped so a handful of selections
// cannot dominate the ranking, and zero or one selections never move a
// candidate.
package rerank

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
)

// Boost shape and defaults.
const (
	// MaxBoost is the hard cap on any boost.
	MaxBoost = 0.5
	// BoostWeight scales the logarithmic growth; ten selections add ~0.1.
	BoostWeight = 0.1
	// DefaultMinScore is the default confidence threshold for FilterLowConfidence.
	DefaultMinScore = 0.3
	// RankWindow is how deep FindRank looks into a candidate list.
	RankWindow = 10
)

// Boost converts a selection count into a score boost:
// min(MaxBoost, log10(count+1) * BoostWeight). Zero for non-positive counts.
func Boost(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(MaxBoost, math.Log10(float64(count)+1)*BoostWeight)
}

// Engine applies selection-history boosts to candidate lists. Stateless; the
// selection counts are a caller-supplied snapshot and are never mutated.
type Engine struct {
	logger *zap.Logger
}

// New creates a re-ranking engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Rerank returns the candidates re-sorted descending by base score plus
// boost. The sort is stable, so candidates with equal final scores keep their
// incoming order. Each returned candidate records the boost applied and the
// selection count used. The input slice is not modified.
func (e *Engine) Rerank(candidates []domain.Candidate, counts map[string]int) []domain.Candidate {
	out := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		count := counts[c.Code]
		boost := Boost(count)
		c.SelectionCount = count
		c.BoostApplied = boost
		c.FinalScore = c.Score + boost
		c.Ranked = true
		out[i] = c

		if boost > 0 {
			e.logger.Debug("selection boost",
				zap.String("code", c.Code),
				zap.Int("count", count),
				zap.Float64("boost", boost),
			)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

// FindRank reports the 1-based position of the selected code within the first
// RankWindow entries of a candidate list, or false when absent. Callers use
// it for feedback logging.
func (e *Engine) FindRank(selectedCode string, candidates []domain.Candidate) (int, bool) {
	window := candidates
	if len(window) > RankWindow {
		window = window[:RankWindow]
	}
	for i, c := range window {
		if c.Code == selectedCode {
			return i + 1, true
		}
	}
	return 0, false
}

// FilterLowConfidence drops candidates whose effective score is below
// threshold. A predicate filter only; ordering is preserved.
func (e *Engine) FilterLowConfidence(candidates []domain.Candidate, threshold float64) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.EffectiveScore() >= threshold {
			out = append(out, c)
		}
	}
	return out
}
