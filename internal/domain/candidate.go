package domain

// Stage identifies which retrieval stage produced a candidate.
type Stage string

// Stage provenance values.
const (
	// StageLexical is the BM25 scoring stage of the cascading pipeline.
	StageLexical Stage = "lexical"
	// StageVector is the weighted-term rerank stage.
	StageVector Stage = "vector"
	// StageSemantic is the embedding-similarity rerank stage.
	StageSemantic Stage = "semantic"
	// StagePrefix is the autocomplete prefix-match stage.
	StagePrefix Stage = "prefix"
	// StageSubstring is the autocomplete substring-match stage.
	StageSubstring Stage = "substring"
	// StageFuzzy is the autocomplete typo-correction stage.
	StageFuzzy Stage = "fuzzy"
)

// Candidate is a transient search hit. Candidates exist only during query
// evaluation and are never persisted.
type Candidate struct {
	Code       string
	Term       string
	English    string
	Definition string

	// Score is the raw score from the stage that produced the candidate.
	// Scores are comparable only within one call's output.
	Score float64
	Stage Stage

	// Fields below are populated by the re-ranking engine.
	FinalScore     float64
	Ranked         bool
	BoostApplied   float64
	SelectionCount int
}

// EffectiveScore returns the re-ranked score when the candidate went through
// the re-ranking engine, the raw stage score otherwise.
func (c Candidate) EffectiveScore() float64 {
	if c.Ranked {
		return c.FinalScore
	}
	return c.Score
}
