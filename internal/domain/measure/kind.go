package measure

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by Lookup for unsupported kind names.
var ErrUnknownKind = errors.New("unknown measurement kind")

// Kind names accepted by Lookup and the configuration.
const (
	KindScalar     = "scalar"
	KindFeetInches = "feet_inches"
)

// Field describes one numeric input a kind needs from the submission form.
type Field struct {
	Name    string
	Integer bool
}

// Kind parameterizes the submission pipeline with a measurement shape.
type Kind interface {
	// Name is the configuration name of the kind.
	Name() string
	// Unit is the storage unit of normalized values.
	Unit() string
	// Title is the default challenge title used for charts.
	Title() string
	// Fields lists the required numeric inputs in the order Normalize expects them.
	Fields() []Field
	// Normalize folds validated, finite, non-negative inputs into one value.
	Normalize(values []float64) float64
	// Format renders a value with one decimal and the unit, for messages.
	Format(v float64) string
	// Display renders a value for the leaderboard.
	Display(v float64) string
}

// Scalar is a single-number challenge measured in pounds (hand grip strength).
var Scalar Kind = scalarKind{}

// FeetInches is a composite challenge stored as total inches (jump height).
var FeetInches Kind = feetInchesKind{}

// Lookup resolves a kind by configuration name.
func Lookup(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case KindScalar, "":
		return Scalar, nil
	case KindFeetInches, "feet-inches", "feetinches":
		return FeetInches, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

type scalarKind struct{}

func (scalarKind) Name() string  { return KindScalar }
func (scalarKind) Unit() string  { return "lbs" }
func (scalarKind) Title() string { return "Hand Grip Strength" }

func (scalarKind) Fields() []Field {
	return []Field{{Name: "measurement"}}
}

func (scalarKind) Normalize(values []float64) float64 { return values[0] }

func (scalarKind) Format(v float64) string { return fmt.Sprintf("%.1f lbs", v) }

func (k scalarKind) Display(v float64) string { return k.Format(v) }

type feetInchesKind struct{}

func (feetInchesKind) Name() string  { return KindFeetInches }
func (feetInchesKind) Unit() string  { return "in" }
func (feetInchesKind) Title() string { return "Jump Height" }

func (feetInchesKind) Fields() []Field {
	return []Field{{Name: "feet", Integer: true}, {Name: "inches"}}
}

func (feetInchesKind) Normalize(values []float64) float64 {
	return ToScalar(int(values[0]), values[1])
}

func (feetInchesKind) Format(v float64) string { return fmt.Sprintf("%.1f in", v) }

func (feetInchesKind) Display(v float64) string {
	feet, inches := FromScalar(v)
	return fmt.Sprintf("%d ft %d in", feet, inches)
}
