package index

import (
	"fmt"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/domain/text"
)

// System is the dependency-injected index handle for one terminology system:
// the catalog plus its three aligned score tables and per-system search
// settings.
type System struct {
	Name     string
	Catalog  *Catalog
	Lexical  *Lexical
	Vocab    *Vocabulary
	Semantic *Semantic

	// TopK is the stage-3 result count for this system.
	TopK int
	// IncludeEnglish controls whether candidates carry the translated label.
	IncludeEnglish bool
}

// DefaultTopK is the stage-3 cut when a system does not configure its own.
const DefaultTopK = 10

// NewSystem builds a System from documents and their precomputed embeddings,
// deriving the lexical and vocabulary tables from the documents' searchable
// text. Table lengths must agree with the document count.
func NewSystem(name string, docs []domain.Document, embeddings [][]float32) (*System, error) {
	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("system %s: %d documents but %d embeddings: %w",
			name, len(docs), len(embeddings), domain.ErrIndexMismatch)
	}

	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = text.Tokenize(d.SearchableText())
	}

	semantic, err := NewSemantic(embeddings)
	if err != nil {
		return nil, fmt.Errorf("system %s: %w", name, err)
	}

	return &System{
		Name:     name,
		Catalog:  NewCatalog(docs),
		Lexical:  NewLexical(docTokens),
		Vocab:    NewVocabulary(docTokens),
		Semantic: semantic,
		TopK:     DefaultTopK,
	}, nil
}

// Candidate materializes the i-th document as a candidate with the given
// score and stage provenance, honoring IncludeEnglish.
func (s *System) Candidate(i int, score float64, stage domain.Stage) domain.Candidate {
	doc := s.Catalog.Doc(i)
	c := domain.Candidate{
		Code:       doc.Code,
		Term:       doc.Term,
		Definition: doc.Definition,
		Score:      score,
		Stage:      stage,
	}
	if s.IncludeEnglish {
		c.English = doc.English
	}
	return c
}

// Registry holds the loaded systems. Built once at startup, read-only after.
type Registry struct {
	systems map[string]*System
}

// NewRegistry creates a registry over the given systems.
func NewRegistry(systems ...*System) *Registry {
	m := make(map[string]*System, len(systems))
	for _, s := range systems {
		m[s.Name] = s
	}
	return &Registry{systems: m}
}

// Get returns the index handle for a system or domain.ErrSystemNotFound.
func (r *Registry) Get(name string) (*System, error) {
	s, ok := r.systems[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrSystemNotFound)
	}
	return s, nil
}

// Names returns the registered system names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	return names
}
