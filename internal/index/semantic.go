package index

import (
	"fmt"
	"math"

	"github.com/codemapper/codemap/internal/domain"
)

// Semantic is the dense embedding table for one catalog, loaded verbatim from
// the index file. Rows are aligned with catalog order.
type Semantic struct {
	rows [][]float32
	dim  int
}

// NewSemantic wraps precomputed embedding rows. All rows must share one
// dimensionality.
func NewSemantic(rows [][]float32) (*Semantic, error) {
	s := &Semantic{rows: rows}
	if len(rows) == 0 {
		return s, nil
	}
	s.dim = len(rows[0])
	for i, row := range rows {
		if len(row) != s.dim {
			return nil, fmt.Errorf("embedding row %d has dim %d, want %d: %w",
				i, len(row), s.dim, domain.ErrIndexMismatch)
		}
	}
	return s, nil
}

// Len returns the number of embedding rows.
func (s *Semantic) Len() int { return len(s.rows) }

// Dim returns the embedding dimensionality.
func (s *Semantic) Dim() int { return s.dim }

// Cosine returns the cosine similarity between the query vector and row i,
// in [-1, 1]. Zero vectors yield 0.
func (s *Semantic) Cosine(query []float32, i int) (float64, error) {
	row := s.rows[i]
	if len(query) != len(row) {
		return 0, fmt.Errorf("query dim %d, index dim %d: %w",
			len(query), len(row), domain.ErrEmbeddingDimMismatch)
	}

	var dot, qNorm, rNorm float64
	for j := range row {
		q, r := float64(query[j]), float64(row[j])
		dot += q * r
		qNorm += q * q
		rNorm += r * r
	}
	if qNorm == 0 || rNorm == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(rNorm)), nil
}
