package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/sevigo/code-reviewer/internal/core"
)

// MemoryStore keeps reviews for the lifetime of the process. It is used when
// no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	reviews []core.ReviewSummary
}

var _ core.ReviewStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, record *core.ReviewRecord) (string, error) {
	row := summarize(record)
	s.mu.Lock()
	s.reviews = append(s.reviews, row)
	s.mu.Unlock()
	return row.ID, nil
}

// Recent returns up to n reviews, newest first. Reviews with equal timestamps
// are ordered by insertion, newest first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]core.ReviewSummary, error) {
	s.mu.RLock()
	out := slices.Clone(s.reviews)
	s.mu.RUnlock()

	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b core.ReviewSummary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n = normalizeLimit(n); len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []core.ReviewSummary{}
	}
	return out, nil
}

func (s *MemoryStore) AggregateStats(context.Context) (*core.ReviewStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.ReviewStats{TotalReviews: len(s.reviews)}
	var duration float64
	for _, r := range s.reviews {
		stats.TotalCritical += r.CriticalCount
		stats.TotalWarnings += r.WarningCount
		stats.TotalSuggestions += r.SuggestionCount
		duration += r.DurationSeconds
	}
	if stats.TotalReviews > 0 {
		stats.AvgDuration = round2(duration / float64(stats.TotalReviews))
	}
	return stats, nil
}
