// Package model contains domain models passed between layers.
package model

import "time"

// Entry is one validated participant result. Entries are immutable once
// appended to a session store.
type Entry struct {
	ID          string    `json:"id"`           // uuid assigned on acceptance
	Seq         int       `json:"seq"`          // zero-based submission index within the session
	Name        string    `json:"name"`         // participant label, duplicates allowed
	Age         int       `json:"age"`          // years, zero accepted
	Value       float64   `json:"value"`        // normalized measurement in the kind's unit
	SubmittedAt time.Time `json:"submitted_at"` // acceptance time
}
