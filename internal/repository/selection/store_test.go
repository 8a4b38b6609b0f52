package selection

import (
	"context"
	"errors"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hGetAllFn func(ctx context.Context, key string) (map[string]string, error)
	hIncrByFn func(ctx context.Context, key, field string, incr int64) (int64, error)

	lastKey   string
	lastField string
	lastIncr  int64
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.lastKey = key
	if m.hGetAllFn != nil {
		return m.hGetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	m.lastKey, m.lastField, m.lastIncr = key, field, incr
	if m.hIncrByFn != nil {
		return m.hIncrByFn(ctx, key, field, incr)
	}
	return incr, nil
}

func TestCounts(t *testing.T) {
	ms := &mockStore{
		hGetAllFn: func(_ context.Context, _ string) (map[string]string, error) {
			return map[string]string{"SP42": "15", "SP43": "2"}, nil
		},
	}
	s := New(ms, "codemap:")

	got, err := s.Counts(context.Background(), "siddha")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if ms.lastKey != "codemap:selections:siddha" {
		t.Errorf("key = %q", ms.lastKey)
	}
	if got["SP42"] != 15 || got["SP43"] != 2 {
		t.Errorf("counts = %v", got)
	}
}

func TestCounts_EmptyHash(t *testing.T) {
	s := New(&mockStore{}, "codemap:")
	got, err := s.Counts(context.Background(), "unani")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("counts = %v, want empty", got)
	}
}

func TestCounts_MalformedValue(t *testing.T) {
	ms := &mockStore{
		hGetAllFn: func(_ context.Context, _ string) (map[string]string, error) {
			return map[string]string{"SP42": "many"}, nil
		},
	}
	s := New(ms, "codemap:")
	if _, err := s.Counts(context.Background(), "siddha"); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func TestCounts_StoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	ms := &mockStore{
		hGetAllFn: func(_ context.Context, _ string) (map[string]string, error) {
			return nil, wantErr
		},
	}
	s := New(ms, "codemap:")
	if _, err := s.Counts(context.Background(), "siddha"); !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestRecord(t *testing.T) {
	ms := &mockStore{
		hIncrByFn: func(_ context.Context, _, _ string, _ int64) (int64, error) {
			return 16, nil
		},
	}
	s := New(ms, "codemap:")

	got, err := s.Record(context.Background(), "siddha", "SP42")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got != 16 {
		t.Errorf("new count = %d, want 16", got)
	}
	if ms.lastKey != "codemap:selections:siddha" || ms.lastField != "SP42" || ms.lastIncr != 1 {
		t.Errorf("HIncrBy(%q, %q, %d)", ms.lastKey, ms.lastField, ms.lastIncr)
	}
}
