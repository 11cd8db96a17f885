package service

import (
	"time"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithKind sets the measurement kind for every session.
func WithKind(kind measure.Kind) Option {
	return func(s *Service) {
		if kind != nil {
			s.kind = kind
		}
	}
}

// WithTitle sets the challenge title shown on the kiosk.
func WithTitle(title string) Option {
	return func(s *Service) {
		if title != "" {
			s.title = title
		}
	}
}

// WithTopK sets the leaderboard size.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxEntries bounds each session store. Zero keeps it unbounded.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// WithQueueSize sets the maximum number of pending submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSubmitTimeout bounds how long Submit waits for the worker.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.submitTimeout = d
		}
	}
}

// WithPublisher sets where accepted outcomes and resets are broadcast.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
