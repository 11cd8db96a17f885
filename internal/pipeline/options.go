package pipeline

import (
	"time"

	"github.com/okian/challengeboard/pkg/logger"
)

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithTopK sets the leaderboard size. Values below 1 are ignored.
func WithTopK(k int) Option {
	return func(s *Session) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithCapacity bounds the session store. Zero keeps it unbounded.
func WithCapacity(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
