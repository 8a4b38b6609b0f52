package indexfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
)

func writeIndexFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siddha.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write index file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeIndexFile(t, `{
		"system": "siddha",
		"documents": [
			{"code": "SP42", "term": "Fever disorder", "english": "Fever", "definition": "Elevated temperature"},
			{"code": "SP43", "term": "Skin rash"}
		],
		"embeddings": [[0.1, 0.2], [0.3, 0.4]]
	}`)

	sys, err := New(zap.NewNop()).Load("siddha", path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sys.Name != "siddha" {
		t.Errorf("Name = %q", sys.Name)
	}
	if sys.Catalog.Len() != 2 || sys.Semantic.Len() != 2 {
		t.Errorf("catalog=%d semantic=%d, want 2 each", sys.Catalog.Len(), sys.Semantic.Len())
	}
	if sys.Semantic.Dim() != 2 {
		t.Errorf("Dim = %d, want 2", sys.Semantic.Dim())
	}
	if sys.Catalog.Doc(0).Code != "SP42" {
		t.Errorf("doc 0 = %+v", sys.Catalog.Doc(0))
	}
}

func TestLoad_LengthMismatch(t *testing.T) {
	path := writeIndexFile(t, `{
		"documents": [{"code": "SP42", "term": "Fever disorder"}],
		"embeddings": [[0.1], [0.2]]
	}`)

	_, err := New(zap.NewNop()).Load("siddha", path)
	if !errors.Is(err, domain.ErrIndexMismatch) {
		t.Errorf("expected ErrIndexMismatch, got %v", err)
	}
}

func TestLoad_MissingCode(t *testing.T) {
	path := writeIndexFile(t, `{
		"documents": [{"term": "Fever disorder"}],
		"embeddings": [[0.1]]
	}`)

	_, err := New(zap.NewNop()).Load("siddha", path)
	if !errors.Is(err, domain.ErrIndexMismatch) {
		t.Errorf("expected ErrIndexMismatch, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := New(zap.NewNop()).Load("siddha", "/nonexistent/siddha.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeIndexFile(t, `{"documents": [`)
	if _, err := New(zap.NewNop()).Load("siddha", path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
