package index

import "math"

// BM25 parameters matching the index builder's defaults.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Lexical is a BM25 index over tokenized searchable text. Stage 1 of the
// cascading pipeline scores every document against it.
type Lexical struct {
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// NewLexical builds the BM25 index from per-document token lists.
func NewLexical(docTokens [][]string) *Lexical {
	n := len(docTokens)
	lex := &Lexical{
		termFreqs: make([]map[string]int, n),
		docLens:   make([]int, n),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	var totalLen int
	for i, tokens := range docTokens {
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			docFreq[term]++
		}
		lex.termFreqs[i] = tf
		lex.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	if n > 0 {
		lex.avgDocLen = float64(totalLen) / float64(n)
	}
	for term, df := range docFreq {
		lex.idf[term] = math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
	}
	return lex
}

// Len returns the number of indexed documents.
func (l *Lexical) Len() int { return len(l.termFreqs) }

// Scores computes the BM25 score of every document against the query tokens.
// The returned slice is aligned with catalog order.
func (l *Lexical) Scores(queryTokens []string) []float64 {
	scores := make([]float64, len(l.termFreqs))
	if l.avgDocLen == 0 {
		return scores
	}

	for i, tf := range l.termFreqs {
		norm := bm25K1 * (1 - bm25B + bm25B*float64(l.docLens[i])/l.avgDocLen)
		var score float64
		for _, term := range queryTokens {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			score += l.idf[term] * freq * (bm25K1 + 1) / (freq + norm)
		}
		scores[i] = score
	}
	return scores
}
