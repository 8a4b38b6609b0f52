package rerank

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
)

func TestBoost_Zero(t *testing.T) {
	if got := Boost(0); got != 0 {
		t.Errorf("Boost(0) = %f, want 0", got)
	}
	if got := Boost(-3); got != 0 {
		t.Errorf("Boost(-3) = %f, want 0", got)
	}
}

func TestBoost_NonDecreasingAndCapped(t *testing.T) {
	prev := 0.0
	for count := 0; count <= 100000; count += 37 {
		got := Boost(count)
		if got < prev {
			t.Fatalf("Boost(%d) = %f decreased from %f", count, got, prev)
		}
		if got > MaxBoost {
			t.Fatalf("Boost(%d) = %f exceeds cap %f", count, got, MaxBoost)
		}
		prev = got
	}
}

func TestBoost_TenSelections(t *testing.T) {
	want := math.Log10(11) * 0.1 // ~0.1041
	if got := Boost(10); math.Abs(got-want) > 1e-9 {
		t.Errorf("Boost(10) = %f, want %f", got, want)
	}
}

func TestRerank_AppliesBoostAndSorts(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := []domain.Candidate{
		{Code: "SP40", Score: 0.85},
		{Code: "SP42", Score: 0.80},
	}

	got := eng.Rerank(candidates, map[string]int{"SP42": 10})

	if got[0].Code != "SP42" {
		t.Fatalf("top = %s, want boosted SP42", got[0].Code)
	}
	want := 0.80 + math.Log10(11)*0.1
	if math.Abs(got[0].FinalScore-want) > 1e-9 {
		t.Errorf("FinalScore = %f, want %f", got[0].FinalScore, want)
	}
	if got[0].SelectionCount != 10 {
		t.Errorf("SelectionCount = %d, want 10", got[0].SelectionCount)
	}
	if got[0].BoostApplied <= 0.1 || got[0].BoostApplied >= 0.11 {
		t.Errorf("BoostApplied = %f, want ~0.104", got[0].BoostApplied)
	}
	if !got[0].Ranked || !got[1].Ranked {
		t.Error("candidates must be marked ranked")
	}
}

func TestRerank_ZeroCountsIsOrderNoOp(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := []domain.Candidate{
		{Code: "SP40", Score: 0.9},
		{Code: "SP41", Score: 0.8},
		{Code: "SP42", Score: 0.8},
		{Code: "SP43", Score: 0.1},
	}

	got := eng.Rerank(candidates, nil)
	for i, c := range got {
		if c.Code != candidates[i].Code {
			t.Errorf("position %d = %s, want %s", i, c.Code, candidates[i].Code)
		}
		if c.FinalScore != c.Score {
			t.Errorf("%s: FinalScore = %f, want base %f", c.Code, c.FinalScore, c.Score)
		}
	}
}

func TestRerank_Deterministic(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := []domain.Candidate{
		{Code: "SP40", Score: 0.5},
		{Code: "SP41", Score: 0.6},
		{Code: "SP42", Score: 0.4},
	}
	counts := map[string]int{"SP42": 50, "SP40": 3}

	a := eng.Rerank(candidates, counts)
	b := eng.Rerank(candidates, counts)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run disagreement at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := []domain.Candidate{
		{Code: "SP40", Score: 0.1},
		{Code: "SP42", Score: 0.05},
	}

	eng.Rerank(candidates, map[string]int{"SP42": 100})
	if candidates[0].Code != "SP40" || candidates[0].Ranked {
		t.Errorf("input slice was mutated: %+v", candidates)
	}
}

func TestFindRank(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := make([]domain.Candidate, 15)
	for i := range candidates {
		candidates[i] = domain.Candidate{Code: codeAt(i)}
	}

	tests := []struct {
		name     string
		code     string
		wantPos  int
		wantFind bool
	}{
		{"first", codeAt(0), 1, true},
		{"edge of window", codeAt(9), 10, true},
		{"beyond window", codeAt(12), 0, false},
		{"absent", "SPXX", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := eng.FindRank(tt.code, candidates)
			if pos != tt.wantPos || ok != tt.wantFind {
				t.Errorf("FindRank(%s) = (%d, %v), want (%d, %v)", tt.code, pos, ok, tt.wantPos, tt.wantFind)
			}
		})
	}
}

func codeAt(i int) string {
	return string(rune('A'+i/10)) + string(rune('0'+i%10))
}

func TestFilterLowConfidence(t *testing.T) {
	eng := New(zap.NewNop())
	candidates := []domain.Candidate{
		{Code: "SP40", Score: 0.9},
		{Code: "SP41", Score: 0.2},
		{Code: "SP42", Score: 0.1, FinalScore: 0.6, Ranked: true},
	}

	got := eng.FilterLowConfidence(candidates, DefaultMinScore)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (kept %v)", len(got), got)
	}
	if got[0].Code != "SP40" || got[1].Code != "SP42" {
		t.Errorf("kept %s, %s; want SP40 and SP42", got[0].Code, got[1].Code)
	}
}
