// Package chart projects the entry sequence into bar chart data.
package chart

import (
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/types"
)

// Project returns one bar per entry in submission order. The chart shows
// chronology; ranked order belongs to the leaderboard.
func Project(entries []model.Entry) []types.Bar {
	bars := make([]types.Bar, len(entries))
	for i, e := range entries {
		bars[i] = types.Bar{Label: e.Name, Value: e.Value}
	}
	return bars
}
