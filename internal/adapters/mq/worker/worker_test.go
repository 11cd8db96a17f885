package worker_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/challengeboard/internal/adapters/mq/queue"
	worker "github.com/okian/challengeboard/internal/adapters/mq/worker"
	model "github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/pipeline"
	logging "github.com/okian/challengeboard/pkg/logger"
)

type mockProcessor struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (m *mockProcessor) Process(_ context.Context, raw model.RawSubmission) (pipeline.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return pipeline.Outcome{}, m.err
	}
	m.names = append(m.names, raw.Name.Text)
	return pipeline.Outcome{Message: "hello " + raw.Name.Text}, nil
}

func (m *mockProcessor) seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

func newJob(ctx context.Context, name string) (queue.Job, chan queue.Result) {
	ch := make(chan queue.Result, 1)
	return queue.Job{Ctx: ctx, Raw: model.RawSubmission{Name: model.Text(name)}, Reply: ch}, ch
}

func await(ch chan queue.Result) queue.Result {
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		return queue.Result{Err: errors.New("no reply")}
	}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		proc := &mockProcessor{}
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("pipeline-worker"))
		go w.Run(ctx)

		convey.Convey("When jobs are enqueued", func() {
			var replies []chan queue.Result
			for _, n := range []string{"Ann", "Bo", "Cy"} {
				j, ch := newJob(context.Background(), n)
				convey.So(q.Enqueue(ctx, j), convey.ShouldBeTrue)
				replies = append(replies, ch)
			}

			convey.Convey("Then each is processed in order and answered", func() {
				for i, want := range []string{"Ann", "Bo", "Cy"} {
					r := await(replies[i])
					convey.So(r.Err, convey.ShouldBeNil)
					convey.So(r.Outcome.Message, convey.ShouldEqual, "hello "+want)
				}
				convey.So(proc.seen(), convey.ShouldResemble, []string{"Ann", "Bo", "Cy"})
			})
		})

		convey.Convey("When the processor fails", func() {
			proc.err = errors.New("boom")
			j, ch := newJob(context.Background(), "Ann")
			q.Enqueue(ctx, j)

			convey.Convey("Then the error is replied", func() {
				convey.So(await(ch).Err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the submitter already gave up", func() {
			jctx, jcancel := context.WithCancel(context.Background())
			jcancel()
			j, ch := newJob(jctx, "Ghost")
			convey.So(q.Enqueue(ctx, j), convey.ShouldBeTrue)

			convey.Convey("Then the job is skipped", func() {
				convey.So(errors.Is(await(ch).Err, context.Canceled), convey.ShouldBeTrue)
				convey.So(proc.seen(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the worker shuts down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerDrainsPendingJobs(t *testing.T) {
	convey.Convey("Given jobs still queued when the worker stops", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		proc := &mockProcessor{}
		w := worker.NewInMemoryWorker(q, proc)

		j, ch := newJob(context.Background(), "Late")
		q.Enqueue(context.Background(), j)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w.Run(ctx)

		convey.Convey("Then the job is answered with ErrClosed or processed", func() {
			r := await(ch)
			if r.Err != nil {
				convey.So(errors.Is(r.Err, queue.ErrClosed), convey.ShouldBeTrue)
			} else {
				convey.So(proc.seen(), convey.ShouldResemble, []string{"Late"})
			}
		})
	})
}
