// Package pipeline runs the submission-to-leaderboard pass: validate, append,
// then derive the comparison message, the leaderboard and the chart from the
// updated store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/challengeboard/internal/adapters/repository"
	"github.com/okian/challengeboard/internal/domain/chart"
	"github.com/okian/challengeboard/internal/domain/comparison"
	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/ranking"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/internal/domain/validation"
	"github.com/okian/challengeboard/pkg/logger"
	"github.com/okian/challengeboard/pkg/metrics"
)

// Info describes a session.
type Info struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Unit      string    `json:"unit"`
	TopK      int       `json:"top_k"`
	Capacity  int       `json:"capacity"`
	StartedAt time.Time `json:"started_at"`
	Entries   int       `json:"entries"`
}

// View is the set of derived views for the current store.
type View struct {
	Session     Info             `json:"session"`
	Entries     []model.Entry    `json:"entries"`
	Chart       []types.Bar      `json:"chart"`
	Leaderboard []types.Standing `json:"leaderboard"`
}

// Outcome is what one accepted submission returns to the kiosk.
type Outcome struct {
	View
	Entry      model.Entry       `json:"entry"`
	Comparison comparison.Result `json:"comparison"`
	Message    string            `json:"message"`
}

// Session owns one store and one measurement kind for one live event.
type Session struct {
	mu sync.Mutex

	id        string
	kind      measure.Kind
	store     *repository.MemoryStore
	topK      int
	capacity  int
	startedAt time.Time
	now       func() time.Time
	logger    logger.Logger
}

// NewSession creates a session with an empty store.
func NewSession(kind measure.Kind, opts ...Option) *Session {
	if kind == nil {
		kind = measure.Scalar
	}
	s := &Session{
		id:   uuid.NewString(),
		kind: kind,
		topK: ranking.DefaultK,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	s.store = repository.NewMemoryStore(repository.WithCapacity(s.capacity))
	s.startedAt = s.now()
	return s
}

// Kind returns the session's measurement kind.
func (s *Session) Kind() measure.Kind { return s.kind }

// Info returns the session description.
func (s *Session) Info(ctx context.Context) Info {
	return Info{
		ID:        s.id,
		Kind:      s.kind.Name(),
		Unit:      s.kind.Unit(),
		TopK:      s.topK,
		Capacity:  s.capacity,
		StartedAt: s.startedAt,
		Entries:   s.store.Count(ctx),
	}
}

// Submit validates raw and, if valid, appends it and recomputes every view.
// The whole pass is one critical section. On error the store is unchanged.
func (s *Session) Submit(ctx context.Context, raw model.RawSubmission) (Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPipelineLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	entry, err := validation.Validate(raw, s.kind)
	if err != nil {
		s.logger.Debug(ctx, "submission rejected", logger.Error(err))
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A caller that gave up while waiting for the lock gets nothing recorded.
	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}

	prior := s.store.All(ctx)
	entry.ID = uuid.NewString()
	entry.SubmittedAt = s.now()
	size, err := s.store.Append(ctx, entry)
	if err != nil {
		s.logger.Warn(ctx, "entry not appended", logger.String("name", entry.Name), logger.Error(err))
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}
	entry.Seq = size - 1

	all := append(prior, entry)
	cmp := comparison.Compare(prior, entry, s.kind)
	metrics.RecordComparison(cmp.Class.String())

	s.logger.Info(ctx, "entry recorded",
		logger.String("session", s.id),
		logger.Int("seq", entry.Seq),
		logger.String("name", entry.Name),
		logger.Float64("value", entry.Value),
		logger.String("class", cmp.Class.String()),
	)

	return Outcome{
		View:       s.view(ctx, all),
		Entry:      entry,
		Comparison: cmp,
		Message:    cmp.Message,
	}, nil
}

// Snapshot derives the views from the current store without submitting.
func (s *Session) Snapshot(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(ctx, s.store.All(ctx))
}

// Standings returns the top n rows of the current ranking.
func (s *Session) Standings(ctx context.Context, n int) []types.Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ranking.Standings(s.store.All(ctx), n, s.kind)
}

func (s *Session) view(ctx context.Context, all []model.Entry) View {
	info := s.Info(ctx)
	info.Entries = len(all)
	return View{
		Session:     info,
		Entries:     all,
		Chart:       chart.Project(all),
		Leaderboard: ranking.Standings(all, s.topK, s.kind),
	}
}
