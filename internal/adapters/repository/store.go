// Package repository holds the append-only entry store of a session.
package repository

import (
	"context"

	"github.com/okian/challengeboard/internal/domain/model"
)

// Store is the ordered, append-only sequence of entries for one session.
// Insertion order is submission order and never changes.
type Store interface {
	// Append adds entry at the end, assigning its Seq, and returns the new size.
	// It fails only with ErrCapacityExceeded when the store is bounded and full.
	Append(ctx context.Context, entry model.Entry) (int, error)

	// All returns a copy of every entry in submission order.
	All(ctx context.Context) []model.Entry

	// Count returns the number of entries.
	Count(ctx context.Context) int

	// IsEmpty reports whether nothing has been appended yet.
	IsEmpty(ctx context.Context) bool
}
