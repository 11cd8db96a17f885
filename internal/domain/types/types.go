// Package types contains the read shapes the kiosk renders.
package types

// Standing is one leaderboard row.
type Standing struct {
	Rank         int     `json:"rank"`
	Place        string  `json:"place"`           // "1st", "2nd", ...
	Medal        string  `json:"medal,omitempty"` // trophy for the podium
	EntryID      string  `json:"entry_id"`
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	DisplayValue string  `json:"display_value"`
}

// Bar is one (label, value) pair of the submission chart.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
