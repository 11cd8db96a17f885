// Package worker runs queued submissions through the pipeline one at a time.
//
// There is exactly one worker per session: the pipeline's average-of-prior
// rule depends on submissions being applied in a single order.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/challengeboard/internal/adapters/mq/queue"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/pipeline"
	"github.com/okian/challengeboard/pkg/logger"
)

// Processor applies one submission.
type Processor interface {
	Process(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error)
}

// Queue defines how the worker receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
	Len(ctx context.Context) int
}

// Worker consumes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker and answers jobs still pending with queue.ErrClosed.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(jobs)
			return
		case <-w.shutdown:
			w.drain(jobs)
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.queue.Len(ctx)
			w.handle(j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) handle(j queue.Job) {
	ctx := j.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// The caller already gave up; applying the entry now would record a
	// result the kiosk never showed.
	if err := ctx.Err(); err != nil {
		w.logger.Debug(ctx, "skipping abandoned submission", logger.Error(err))
		reply(j, queue.Result{Err: err})
		return
	}

	out, err := w.processor.Process(ctx, j.Raw)
	reply(j, queue.Result{Outcome: out, Err: err})
}

// drain answers every job still buffered without processing it.
func (w *InMemoryWorker) drain(jobs <-chan queue.Job) {
	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			reply(j, queue.Result{Err: queue.ErrClosed})
		default:
			return
		}
	}
}

func reply(j queue.Job, r queue.Result) {
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- r:
	default:
	}
}
