package index

import (
	"errors"
	"testing"

	"github.com/codemapper/codemap/internal/domain"
)

func testDocs() []domain.Document {
	return []domain.Document{
		{Code: "SP42", Term: "Fever disorder", English: "Fever", Definition: "Elevated body temperature"},
		{Code: "SP43", Term: "Skin rash", English: "Rash", Definition: "Eruption of the skin"},
	}
}

func testEmbeddings(n, dim int) [][]float32 {
	rows := make([][]float32, n)
	for i := range rows {
		rows[i] = make([]float32, dim)
		rows[i][i%dim] = 1
	}
	return rows
}

func TestNewSystem_AlignsTables(t *testing.T) {
	sys, err := NewSystem("siddha", testDocs(), testEmbeddings(2, 4))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	if sys.Catalog.Len() != 2 || sys.Lexical.Len() != 2 || sys.Vocab.Len() != 2 || sys.Semantic.Len() != 2 {
		t.Errorf("table lengths differ: catalog=%d lexical=%d vocab=%d semantic=%d",
			sys.Catalog.Len(), sys.Lexical.Len(), sys.Vocab.Len(), sys.Semantic.Len())
	}
	if sys.TopK != DefaultTopK {
		t.Errorf("TopK = %d, want %d", sys.TopK, DefaultTopK)
	}
}

func TestNewSystem_LengthMismatchFatal(t *testing.T) {
	_, err := NewSystem("siddha", testDocs(), testEmbeddings(3, 4))
	if !errors.Is(err, domain.ErrIndexMismatch) {
		t.Errorf("expected ErrIndexMismatch, got %v", err)
	}
}

func TestSystemCandidate_EnglishGating(t *testing.T) {
	sys, err := NewSystem("siddha", testDocs(), testEmbeddings(2, 4))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	c := sys.Candidate(0, 0.9, domain.StageSemantic)
	if c.English != "" {
		t.Errorf("English = %q, want empty when IncludeEnglish is off", c.English)
	}
	if c.Code != "SP42" || c.Score != 0.9 || c.Stage != domain.StageSemantic {
		t.Errorf("unexpected candidate: %+v", c)
	}

	sys.IncludeEnglish = true
	if c := sys.Candidate(0, 0.9, domain.StageSemantic); c.English != "Fever" {
		t.Errorf("English = %q, want %q", c.English, "Fever")
	}
}

func TestCatalog_NormalizedFields(t *testing.T) {
	cat := NewCatalog(testDocs())
	e := cat.Entry(0)
	if e.NormTerm != "fever disorder" {
		t.Errorf("NormTerm = %q", e.NormTerm)
	}
	if e.NormCode != "sp42" {
		t.Errorf("NormCode = %q", e.NormCode)
	}
	if e.Blob != "fever disorder sp42 elevated body temperature" {
		t.Errorf("Blob = %q", e.Blob)
	}
}

func TestRegistry_Get(t *testing.T) {
	sys, err := NewSystem("siddha", testDocs(), testEmbeddings(2, 4))
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	reg := NewRegistry(sys)

	if got, err := reg.Get("siddha"); err != nil || got != sys {
		t.Errorf("Get(siddha) = %v, %v", got, err)
	}
	if _, err := reg.Get("unani"); !errors.Is(err, domain.ErrSystemNotFound) {
		t.Errorf("expected ErrSystemNotFound, got %v", err)
	}
}
