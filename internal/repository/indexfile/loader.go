// Package indexfile loads one terminology system's index file: the document
// catalog plus its precomputed embedding table, as exported by the offline
// index builder. The lexical and vocabulary tables are derived at load time;
// embeddings are taken verbatim.
package indexfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
	"github.com/codemapper/codemap/internal/index"
)

// Loader builds index.System handles from index files.
type Loader struct {
	logger *zap.Logger
}

// New creates a loader.
func New(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the index file at path and builds the system's index handle.
// Misaligned tables are a fatal load error; the system must not serve
// queries.
func (l *Loader) Load(name, path string) (*index.System, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read index file for %s: %w", name, err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse index file for %s: %w", name, err)
	}

	docs := make([]domain.Document, len(file.Documents))
	for i, d := range file.Documents {
		if d.Code == "" {
			return nil, fmt.Errorf("document %d of %s has no code: %w", i, name, domain.ErrIndexMismatch)
		}
		docs[i] = domain.Document{
			Code:       d.Code,
			Term:       d.Term,
			English:    d.English,
			Definition: d.Definition,
		}
	}

	sys, err := index.NewSystem(name, docs, file.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("build indices: %w", err)
	}

	l.logger.Info("loaded terminology system",
		zap.String("system", name),
		zap.String("path", path),
		zap.Int("documents", sys.Catalog.Len()),
		zap.Int("embedding_dim", sys.Semantic.Dim()),
	)
	return sys, nil
}
