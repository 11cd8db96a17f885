// Package service wires the kiosk core together: it owns the current
// session, guards against double submissions, and feeds submissions through
// the bounded queue to the single pipeline worker.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/challengeboard/internal/adapters/mq/queue"
	"github.com/okian/challengeboard/internal/adapters/mq/worker"
	"github.com/okian/challengeboard/internal/adapters/repository"
	"github.com/okian/challengeboard/internal/domain/dedupe"
	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/ranking"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/internal/domain/validation"
	"github.com/okian/challengeboard/internal/pipeline"
	"github.com/okian/challengeboard/pkg/logger"
	"github.com/okian/challengeboard/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Live feed event names.
const (
	EventSubmission = "submission"
	EventReset      = "reset"
)

// Publisher broadcasts kiosk events to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) {}

// Service implements the API dependencies for the kiosk.
type Service struct {
	mu sync.RWMutex

	// sessionMu is held for reading while a submission runs and for writing
	// while a reset swaps the session.
	sessionMu sync.RWMutex
	session   *pipeline.Session

	// Core components
	deduper   dedupe.Deduper
	jobs      *queue.InMemoryQueue
	worker    *worker.InMemoryWorker
	publisher Publisher

	// Configuration
	kind          measure.Kind
	title         string
	topK          int
	maxEntries    int
	queueSize     int
	dedupeSize    int
	submitTimeout time.Duration

	// State
	started      bool
	stopped      bool
	cancelWorker context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		kind:          measure.Scalar,
		topK:          ranking.DefaultK,
		queueSize:     256,
		dedupeSize:    4096,
		submitTimeout: 5 * time.Second,
		publisher:     noopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.title == "" {
		s.title = s.kind.Title()
	}
	return s
}

// Start builds the first session and starts the pipeline worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting kiosk service...")

	s.sessionMu.Lock()
	s.session = s.newSession()
	s.sessionMu.Unlock()

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.jobs, s, worker.WithName("pipeline-worker"))

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelWorker = cancel
	go s.worker.Run(workerCtx)

	s.started = true
	s.stopped = false
	s.logger.Info(ctx, "kiosk service started",
		logger.String("kind", s.kind.Name()),
		logger.Int("topK", s.topK),
		logger.Int("maxEntries", s.maxEntries),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("submitTimeout", s.submitTimeout),
	)
	return nil
}

// Stop closes the queue, answers pending submissions and stops the worker.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping kiosk service...")

	_ = s.jobs.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
	}
	s.cancelWorker()

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "kiosk service stopped")
}

func (s *Service) newSession() *pipeline.Session {
	return pipeline.NewSession(s.kind,
		pipeline.WithTopK(s.topK),
		pipeline.WithCapacity(s.maxEntries),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
}

func (s *Service) ready() error {
	switch {
	case s.started:
		return nil
	case s.stopped:
		return ErrStopped
	default:
		return ErrNotStarted
	}
}

// Kind returns the configured measurement kind.
func (s *Service) Kind() measure.Kind { return s.kind }

// Submit runs one kiosk submission through the pipeline and waits for its outcome.
func (s *Service) Submit(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error) {
	out, err := s.submit(ctx, raw)
	metrics.RecordSubmission(outcomeLabel(err))
	return out, err
}

func (s *Service) submit(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error) {
	s.mu.RLock()
	if err := s.ready(); err != nil {
		s.mu.RUnlock()
		return pipeline.Outcome{}, err
	}
	deduper, jobs := s.deduper, s.jobs
	s.mu.RUnlock()

	id := raw.SubmissionID
	if id != "" && deduper.SeenAndRecord(ctx, id) {
		s.logger.Debug(ctx, "duplicate submission", logger.String("submissionID", id))
		return pipeline.Outcome{}, fmt.Errorf("submission %s: %w", id, ErrDuplicate)
	}
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	reply := make(chan queue.Result, 1)
	if !jobs.Enqueue(ctx, queue.Job{Ctx: ctx, Raw: raw, Reply: reply}) {
		if id != "" {
			deduper.Unrecord(ctx, id)
		}
		if jobs.IsClosed() {
			return pipeline.Outcome{}, ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return pipeline.Outcome{}, err
		}
		return pipeline.Outcome{}, ErrBackpressure
	}

	select {
	case r := <-reply:
		return s.settle(ctx, id, deduper, r)
	case <-ctx.Done():
		// The worker may still record the entry, so the id stays remembered
		// until its reply arrives.
		go func() {
			_, _ = s.settle(context.WithoutCancel(ctx), id, deduper, <-reply)
		}()
		s.logger.Warn(ctx, "submission timed out waiting for the pipeline", logger.Error(ctx.Err()))
		return pipeline.Outcome{}, fmt.Errorf("waiting for pipeline: %w", ctx.Err())
	}
}

// settle forgets the submission id when the pipeline did not record the entry.
func (s *Service) settle(ctx context.Context, id string, deduper dedupe.Deduper, r queue.Result) (pipeline.Outcome, error) {
	if r.Err == nil {
		return r.Outcome, nil
	}
	if id != "" {
		deduper.Unrecord(ctx, id)
	}
	if errors.Is(r.Err, queue.ErrClosed) {
		return pipeline.Outcome{}, ErrStopped
	}
	return pipeline.Outcome{}, r.Err
}

// Process implements worker.Processor against the current session and
// publishes every recorded entry to the live feed.
func (s *Service) Process(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error) {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()

	out, err := s.session.Submit(ctx, raw)
	if err != nil {
		return out, err
	}
	s.publisher.Publish(context.WithoutCancel(ctx), EventSubmission, out)
	return out, nil
}

// Snapshot returns the current entries, chart and leaderboard.
func (s *Service) Snapshot(ctx context.Context) (pipeline.View, error) {
	if err := s.check(); err != nil {
		return pipeline.View{}, err
	}
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	return s.session.Snapshot(ctx), nil
}

// Leaderboard returns the top n standings of the current session.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Standing, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	return s.session.Standings(ctx, n), nil
}

// Session describes the current session.
func (s *Service) Session(ctx context.Context) (pipeline.Info, error) {
	if err := s.check(); err != nil {
		return pipeline.Info{}, err
	}
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	return s.session.Info(ctx), nil
}

// Reset discards the current session and starts an empty one.
func (s *Service) Reset(ctx context.Context) (pipeline.Info, error) {
	if err := s.check(); err != nil {
		return pipeline.Info{}, err
	}

	s.sessionMu.Lock()
	old := s.session.Info(ctx)
	s.session = s.newSession()
	info := s.session.Info(ctx)
	view := s.session.Snapshot(ctx)
	s.sessionMu.Unlock()

	s.mu.RLock()
	s.deduper.Reset(ctx)
	s.mu.RUnlock()

	metrics.RecordSessionReset()
	s.logger.Info(ctx, "session reset",
		logger.String("previous", old.ID),
		logger.Int("discardedEntries", old.Entries),
		logger.String("session", info.ID),
	)
	s.publisher.Publish(ctx, EventReset, view)
	return info, nil
}

func (s *Service) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"kind":       s.kind.Name(),
		"title":      s.title,
		"topK":       s.topK,
		"maxEntries": s.maxEntries,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}

	if s.started {
		s.sessionMu.RLock()
		info := s.session.Info(ctx)
		s.sessionMu.RUnlock()

		stats["sessionID"] = info.ID
		stats["sessionStartedAt"] = info.StartedAt
		stats["entries"] = info.Entries
		stats["queueLength"] = s.jobs.Len(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}

// outcomeLabel maps a submission result to its metrics label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, validation.ErrMissingField):
		return "missing_field"
	case errors.Is(err, validation.ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrBackpressure):
		return "backpressure"
	case errors.Is(err, repository.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrNotStarted), errors.Is(err, ErrStopped):
		return "unavailable"
	default:
		return "error"
	}
}
