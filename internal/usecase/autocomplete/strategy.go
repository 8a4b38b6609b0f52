package autocomplete

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/domain/text"
	"github.com/codemapper/codemap/internal/index"
)

// prefixMatch collects every document whose normalized term, code, or
// definition starts with the query.
func prefixMatch(sys *index.System, st *chainState) {
	for i := 0; i < sys.Catalog.Len(); i++ {
		e := sys.Catalog.Entry(i)
		if strings.HasPrefix(e.NormTerm, st.query) ||
			strings.HasPrefix(e.NormCode, st.query) ||
			strings.HasPrefix(e.NormDefinition, st.query) {
			st.add(sys.Candidate(i, 0, domain.StagePrefix))
		}
	}
}

// substringMatch appends documents whose normalized blob contains the query,
// skipping documents earlier stages already produced.
func substringMatch(sys *index.System, st *chainState) {
	for i := 0; i < sys.Catalog.Len(); i++ {
		if strings.Contains(sys.Catalog.Entry(i).Blob, st.query) {
			st.add(sys.Candidate(i, 0, domain.StageSubstring))
		}
	}
}

// fuzzyHit pairs a catalog position with its best edit distance.
type fuzzyHit struct {
	doc      int
	distance int
}

// fuzzyMatch scores every document by the minimum edit distance between the
// query and its term, its code, and each term word longer than two
// characters. Hits within maxEditDistance become suggestions and results.
func fuzzyMatch(sys *index.System, st *chainState) {
	var hits []fuzzyHit
	for i := 0; i < sys.Catalog.Len(); i++ {
		e := sys.Catalog.Entry(i)
		best := text.Levenshtein(st.query, e.NormTerm)
		if d := text.Levenshtein(st.query, e.NormCode); d < best {
			best = d
		}
		for _, word := range strings.Fields(e.NormTerm) {
			if len(word) <= 2 {
				continue
			}
			if d := text.Levenshtein(st.query, word); d < best {
				best = d
			}
		}
		if best <= maxEditDistance {
			hits = append(hits, fuzzyHit{doc: i, distance: best})
		}
	}

	// Closest first; the stable sort keeps catalog order within a distance.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	for rank, h := range hits {
		cand := sys.Candidate(h.doc, 0, domain.StageFuzzy)
		if rank < maxSuggestions {
			st.suggestions = append(st.suggestions, Suggestion{
				Candidate: cand,
				Distance:  h.distance,
				Message:   fmt.Sprintf("Did you mean '%s'?", cand.Term),
			})
		}
		if rank < maxFuzzyResults {
			st.add(cand)
		}
	}
}

// add appends a candidate unless its code was already collected.
func (st *chainState) add(c domain.Candidate) {
	if st.seen[c.Code] {
		return
	}
	st.seen[c.Code] = true
	st.results = append(st.results, c)
}
