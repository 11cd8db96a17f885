package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/pkg/metrics"
)

// MemoryStore implements Store over a slice guarded by a RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []model.Entry
	capacity int // 0 = unbounded
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateEntries(0)
	return s
}

// Append implements Store.Append.
func (s *MemoryStore) Append(_ context.Context, entry model.Entry) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreAppendLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.entries) >= s.capacity {
		return len(s.entries), fmt.Errorf("append %q: %w (capacity %d)", entry.Name, ErrCapacityExceeded, s.capacity)
	}
	entry.Seq = len(s.entries)
	s.entries = append(s.entries, entry)
	metrics.UpdateEntries(len(s.entries))
	return len(s.entries), nil
}

// All implements Store.All.
func (s *MemoryStore) All(_ context.Context) []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IsEmpty implements Store.IsEmpty.
func (s *MemoryStore) IsEmpty(ctx context.Context) bool {
	return s.Count(ctx) == 0
}

// Capacity returns the configured bound, zero when unbounded.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}
