package domain

import "strings"

// Document is one terminology catalog entry. Documents are created when a
// catalog is loaded and are immutable for the life of the process.
type Document struct {
	Code       string
	Term       string
	English    string
	Definition string
}

// placeholderDefinition is emitted by some catalog exports instead of an
// empty string.
const placeholderDefinition = "No description available."

// SearchableText concatenates the document fields used to build indices.
// Empty and placeholder parts are skipped.
func (d Document) SearchableText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.Code, d.Term, d.English, d.Definition} {
		if p == "" || p == placeholderDefinition {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ". ")
}
