// Package selection persists per-system selection counters: one hash per
// terminology system, one field per catalog code. The search core only ever
// reads a snapshot of the counters; writes come from the feedback endpoint.
package selection

import (
	"context"
	"fmt"
	"strconv"
)

// store is the consumer interface for selection counters.
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error)
}

// Store reads and records selection counts.
type Store struct {
	store     store
	keyPrefix string
}

// New creates a selection store. keyPrefix namespaces the hash keys,
// e.g. "codemap:".
func New(s store, keyPrefix string) *Store {
	return &Store{store: s, keyPrefix: keyPrefix}
}

// Counts returns the selection-count snapshot for a system. A system that
// was never selected from yields an empty map.
func (s *Store) Counts(ctx context.Context, system string) (map[string]int, error) {
	fields, err := s.store.HGetAll(ctx, s.key(system))
	if err != nil {
		return nil, fmt.Errorf("selection counts %s: %w", system, err)
	}

	counts := make(map[string]int, len(fields))
	for code, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("selection count %s/%s = %q: %w", system, code, raw, err)
		}
		counts[code] = n
	}
	return counts, nil
}

// Record increments the selection counter for a code and returns the new
// count.
func (s *Store) Record(ctx context.Context, system, code string) (int, error) {
	val, err := s.store.HIncrBy(ctx, s.key(system), code, 1)
	if err != nil {
		return 0, fmt.Errorf("record selection %s/%s: %w", system, code, err)
	}
	return int(val), nil
}

func (s *Store) key(system string) string {
	return s.keyPrefix + "selections:" + system
}
