// Package index holds the immutable, query-time read-only structures built
// once per terminology catalog: the document catalog with precomputed
// normalized fields, the BM25 lexical index, the fixed-vocabulary TF-IDF
// table, and the dense embedding table. All tables are aligned by position;
// index i denotes the same document everywhere.
package index

import (
	"strings"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/domain/text"
)

// Entry is a catalog document plus its precomputed normalized fields.
type Entry struct {
	Doc domain.Document

	NormTerm       string
	NormCode       string
	NormDefinition string
	// Blob is the normalized concatenation of term, code, and definition,
	// used for substring matching.
	Blob string
}

// Catalog is an immutable ordered list of documents for one terminology
// system. Safe for concurrent readers; never mutated after construction.
type Catalog struct {
	entries []Entry
}

// NewCatalog precomputes normalized fields for every document. Catalog order
// is the documents' insertion order and is preserved everywhere.
func NewCatalog(docs []domain.Document) *Catalog {
	entries := make([]Entry, len(docs))
	for i, d := range docs {
		e := Entry{
			Doc:            d,
			NormTerm:       text.Normalize(d.Term),
			NormCode:       text.Normalize(d.Code),
			NormDefinition: text.Normalize(d.Definition),
		}
		e.Blob = text.Normalize(strings.Join([]string{d.Term, d.Code, d.Definition}, " "))
		entries[i] = e
	}
	return &Catalog{entries: entries}
}

// Len returns the number of documents.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the i-th catalog entry.
func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Doc returns the i-th document.
func (c *Catalog) Doc(i int) domain.Document { return c.entries[i].Doc }
