// Package ranking orders entries for the leaderboard.
package ranking

import (
	"cmp"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/types"
)

// DefaultK is the size of the podium.
const DefaultK = 3

var medals = [...]string{"🥇", "🥈", "🥉"}

// Rank returns a copy of entries sorted by Value descending. The sort is
// stable: equal values keep their submission order, so a later tie never
// overtakes an earlier participant.
func Rank(entries []model.Entry) []model.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.Entry) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// TopK returns the first min(k, len(entries)) entries of Rank.
func TopK(entries []model.Entry, k int) []model.Entry {
	if k <= 0 {
		return []model.Entry{}
	}
	ranked := Rank(entries)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Standings renders the top k entries as leaderboard rows.
func Standings(entries []model.Entry, k int, kind measure.Kind) []types.Standing {
	top := TopK(entries, k)
	rows := make([]types.Standing, len(top))
	for i, e := range top {
		rows[i] = types.Standing{
			Rank:         i + 1,
			Place:        humanize.Ordinal(i + 1),
			EntryID:      e.ID,
			Name:         e.Name,
			Value:        e.Value,
			DisplayValue: kind.Display(e.Value),
		}
		if i < len(medals) {
			rows[i].Medal = medals[i]
		}
	}
	return rows
}
