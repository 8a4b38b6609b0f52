package index

import "math"

// SparseVector is a weight vector over the fixed vocabulary, keyed by term id.
type SparseVector map[int]float64

// Dot returns the dot product of two sparse vectors.
func (v SparseVector) Dot(other SparseVector) float64 {
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, w := range a {
		sum += w * b[id]
	}
	return sum
}

// Vocabulary is the fixed-vocabulary TF-IDF table used by stage 2 of the
// cascading pipeline: a term-id mapping, smoothed IDF weights, and one
// L2-normalized sparse vector per document.
type Vocabulary struct {
	terms   map[string]int
	idf     []float64
	vectors []SparseVector
}

// NewVocabulary builds the TF-IDF table from per-document token lists. IDF is
// smoothed (ln((1+n)/(1+df)) + 1) and document vectors are L2-normalized, so
// dot products against an encoded query are cosine similarities.
func NewVocabulary(docTokens [][]string) *Vocabulary {
	voc := &Vocabulary{terms: make(map[string]int)}

	docFreq := make(map[int]int)
	rawFreqs := make([]map[int]int, len(docTokens))
	for i, tokens := range docTokens {
		tf := make(map[int]int, len(tokens))
		for _, tok := range tokens {
			id, ok := voc.terms[tok]
			if !ok {
				id = len(voc.terms)
				voc.terms[tok] = id
			}
			tf[id]++
		}
		for id := range tf {
			docFreq[id]++
		}
		rawFreqs[i] = tf
	}

	n := float64(len(docTokens))
	voc.idf = make([]float64, len(voc.terms))
	for id, df := range docFreq {
		voc.idf[id] = math.Log((1+n)/(1+float64(df))) + 1
	}

	voc.vectors = make([]SparseVector, len(docTokens))
	for i, tf := range rawFreqs {
		voc.vectors[i] = voc.weigh(tf)
	}
	return voc
}

// Len returns the number of document vectors.
func (v *Vocabulary) Len() int { return len(v.vectors) }

// Vector returns the i-th document's weighted vector.
func (v *Vocabulary) Vector(i int) SparseVector { return v.vectors[i] }

// Encode turns query tokens into an L2-normalized weighted vector over the
// fixed vocabulary. Out-of-vocabulary tokens are dropped.
func (v *Vocabulary) Encode(queryTokens []string) SparseVector {
	tf := make(map[int]int)
	for _, tok := range queryTokens {
		if id, ok := v.terms[tok]; ok {
			tf[id]++
		}
	}
	return v.weigh(tf)
}

// weigh applies IDF weights to raw term frequencies and L2-normalizes.
func (v *Vocabulary) weigh(tf map[int]int) SparseVector {
	vec := make(SparseVector, len(tf))
	var sumSq float64
	for id, freq := range tf {
		w := float64(freq) * v.idf[id]
		vec[id] = w
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for id := range vec {
			vec[id] /= norm
		}
	}
	return vec
}
