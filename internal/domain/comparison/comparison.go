// Package comparison classifies a new entry against the running average of
// the entries submitted before it.
package comparison

import (
	"fmt"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
)

// Class is the outcome of comparing one entry with the prior average.
type Class int

// Exactly one class holds for any comparison.
const (
	First Class = iota
	Above
	Below
	Equal
)

var classNames = [...]string{First: "first", Above: "above", Below: "below", Equal: "equal"}

func (c Class) String() string {
	if c < First || c > Equal {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// MarshalText renders the class name in JSON.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Result is the comparison view for the newest entry.
type Result struct {
	Class Class `json:"class"`
	// Average is the mean of the prior entries; zero when Class is First.
	Average float64 `json:"average"`
	// PriorCount is how many entries the average was taken over.
	PriorCount int    `json:"prior_count"`
	Message    string `json:"message"`
}

// Mean returns the arithmetic mean of the entry values, and false for none.
func Mean(entries []model.Entry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	var sum float64
	for _, e := range entries {
		sum += e.Value
	}
	return sum / float64(len(entries)), true
}

// Classify compares value with avg at full precision.
func Classify(value, avg float64) Class {
	switch {
	case value > avg:
		return Above
	case value < avg:
		return Below
	default:
		return Equal
	}
}

// Compare classifies entry against prior, which must not include entry itself.
// Values in the message are rounded to one decimal; the classification is not.
func Compare(prior []model.Entry, entry model.Entry, kind measure.Kind) Result {
	avg, ok := Mean(prior)
	if !ok {
		return Result{
			Class:   First,
			Message: fmt.Sprintf("Welcome %s! You're the first participant! 🥳", entry.Name),
		}
	}

	res := Result{Class: Classify(entry.Value, avg), Average: avg, PriorCount: len(prior)}
	switch res.Class {
	case Above:
		res.Message = fmt.Sprintf("Wow, %s! You posted %s, which is higher than the average of %s!",
			entry.Name, kind.Format(entry.Value), kind.Format(avg))
	case Below:
		res.Message = fmt.Sprintf("Keep practicing, %s! You posted %s, which is below the average of %s.",
			entry.Name, kind.Format(entry.Value), kind.Format(avg))
	default:
		res.Message = fmt.Sprintf("Amazing, %s! You exactly matched the average at %s!",
			entry.Name, kind.Format(avg))
	}
	return res
}
