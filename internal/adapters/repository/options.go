package repository

import "github.com/okian/challengeboard/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity bounds the number of entries. Zero or negative means unbounded.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithInitialSize preallocates room for n entries.
func WithInitialSize(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.entries = make([]model.Entry, 0, n)
		}
	}
}
