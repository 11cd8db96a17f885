package simulate

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/challengeboard/internal/domain/comparison"
	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/ranking"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/pkg/logger"
)

// ErrMismatch is wrapped by every verification failure.
var ErrMismatch = errors.New("kiosk state does not match submissions")

// verifyEntries checks that the store is in submission order and that every
// acknowledged comparison is what the prior entries imply.
func verifyEntries(ctx context.Context, cfg *Config, kind measure.Kind, entries []model.Entry, acks map[string]Ack, stats *Stats) error {
	logger.Get().Info(ctx, "verifying entries", logger.Int("entries", len(entries)), logger.Int("acks", len(acks)))

	for i, e := range entries {
		if e.Seq != i {
			return fmt.Errorf("%w: entry %d carries seq %d", ErrMismatch, i, e.Seq)
		}
	}
	if cfg.Reset && len(entries) != stats.Accepted {
		return fmt.Errorf("%w: store holds %d entries, %d were accepted", ErrMismatch, len(entries), stats.Accepted)
	}

	for id, ack := range acks {
		seq := ack.Entry.Seq
		if seq < 0 || seq >= len(entries) {
			return fmt.Errorf("%w: submission %s acknowledged with seq %d outside the store", ErrMismatch, id, seq)
		}
		stored := entries[seq]
		if stored.ID != ack.Entry.ID || stored.Value != ack.Entry.Value {
			return fmt.Errorf("%w: seq %d holds %s (%v), acknowledged %s (%v)",
				ErrMismatch, seq, stored.ID, stored.Value, ack.Entry.ID, ack.Entry.Value)
		}

		want := comparison.Compare(entries[:seq], stored, kind)
		if ack.Comparison.Class != want.Class.String() || ack.Message != want.Message {
			return fmt.Errorf("%w: seq %d compared as %q %q, expected %q %q",
				ErrMismatch, seq, ack.Comparison.Class, ack.Message, want.Class, want.Message)
		}
		if ack.Comparison.PriorCount != seq {
			return fmt.Errorf("%w: seq %d compared against %d prior entries", ErrMismatch, seq, ack.Comparison.PriorCount)
		}
		stats.EntriesVerified++
	}
	return nil
}

// verifyLeaderboard checks the served leaderboard against a local ranking of
// the served entries.
func verifyLeaderboard(ctx context.Context, kind measure.Kind, entries []model.Entry, board []types.Standing, topN int) error {
	logger.Get().Info(ctx, "verifying leaderboard", logger.Int("rows", len(board)))

	want := ranking.Standings(entries, topN, kind)
	if len(board) != len(want) {
		return fmt.Errorf("%w: leaderboard has %d rows, expected %d", ErrMismatch, len(board), len(want))
	}
	for i := range want {
		got, exp := board[i], want[i]
		if got.Rank != exp.Rank || got.EntryID != exp.EntryID || got.Value != exp.Value || got.DisplayValue != exp.DisplayValue {
			return fmt.Errorf("%w: row %d is %s %s (%s), expected %s %s (%s)",
				ErrMismatch, i+1, got.Place, got.Name, got.DisplayValue, exp.Place, exp.Name, exp.DisplayValue)
		}
		if i > 0 && got.Value > board[i-1].Value {
			return fmt.Errorf("%w: leaderboard not sorted at row %d", ErrMismatch, i+1)
		}
	}
	return nil
}
