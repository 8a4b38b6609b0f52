package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": ` + content + `}}]
		}`))
	}))
}

func testCandidates() []domain.Candidate {
	return []domain.Candidate{
		{Code: "SP42", Term: "Fever disorder", Score: 0.9},
		{Code: "SP43", Term: "Skin rash", Score: 0.7},
	}
}

func newTestRefiner(url string) *Refiner {
	return NewRefiner(&RefinerConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func TestRefine_PicksAnsweredCode(t *testing.T) {
	server := chatServer(t, `"{\"code\": \"SP43\", \"reason\": \"rash dominates\"}"`, http.StatusOK)
	defer server.Close()

	got, err := newTestRefiner(server.URL).Refine(context.Background(), "itchy skin", testCandidates())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got.Code != "SP43" {
		t.Errorf("Code = %s, want SP43", got.Code)
	}
}

func TestRefine_FallsBackOnGarbage(t *testing.T) {
	server := chatServer(t, `"not json at all"`, http.StatusOK)
	defer server.Close()

	got, err := newTestRefiner(server.URL).Refine(context.Background(), "fever", testCandidates())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got.Code != "SP42" {
		t.Errorf("Code = %s, want top candidate SP42", got.Code)
	}
}

func TestRefine_FallsBackOnAPIError(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	got, err := newTestRefiner(server.URL).Refine(context.Background(), "fever", testCandidates())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got.Code != "SP42" {
		t.Errorf("Code = %s, want top candidate SP42", got.Code)
	}
}

func TestRefine_FallsBackOnUnknownCode(t *testing.T) {
	server := chatServer(t, `"{\"code\": \"ZZ99\", \"reason\": \"hallucinated\"}"`, http.StatusOK)
	defer server.Close()

	got, err := newTestRefiner(server.URL).Refine(context.Background(), "fever", testCandidates())
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got.Code != "SP42" {
		t.Errorf("Code = %s, want top candidate SP42", got.Code)
	}
}

func TestRefine_NoCandidates(t *testing.T) {
	server := chatServer(t, `"{}"`, http.StatusOK)
	defer server.Close()

	_, err := newTestRefiner(server.URL).Refine(context.Background(), "fever", nil)
	if !errors.Is(err, domain.ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}
