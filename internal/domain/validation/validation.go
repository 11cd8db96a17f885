// Package validation turns raw kiosk form values into normalized entries.
package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
)

// Validate checks presence first and numeric shape second, then normalizes the
// measurement through kind. It has no side effects. The returned entry has no
// ID, Seq or timestamp yet; the session assigns those on append.
func Validate(raw model.RawSubmission, kind measure.Kind) (model.Entry, error) {
	name := strings.TrimSpace(raw.Name.Text)
	if raw.Name.Missing() {
		return model.Entry{}, missing("name")
	}
	if raw.Age.Missing() {
		return model.Entry{}, missing("age")
	}
	fields := kind.Fields()
	for _, f := range fields {
		if raw.Field(f.Name).Missing() {
			return model.Entry{}, missing(f.Name)
		}
	}

	age, err := parseAge(raw.Age.Text)
	if err != nil {
		return model.Entry{}, err
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseNumber(f, raw.Field(f.Name).Text)
		if err != nil {
			return model.Entry{}, err
		}
		values[i] = v
	}

	value := kind.Normalize(values)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.Entry{}, invalid(fields[0].Name, "a finite number")
	}
	return model.Entry{Name: name, Age: age, Value: value}, nil
}

// parseAge accepts integers and integral decimals such as "10.0".
func parseAge(text string) (int, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 {
			return 0, invalid("age", "a whole number of years, not negative")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || !isWhole(f) || f > math.MaxInt32 {
		return 0, invalid("age", "a whole number of years")
	}
	if f < 0 {
		return 0, invalid("age", "a whole number of years, not negative")
	}
	return int(f), nil
}

func parseNumber(f measure.Field, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(f.Name, "a number")
	}
	if v < 0 {
		return 0, invalid(f.Name, "a number that is not negative")
	}
	if f.Integer && (!isWhole(v) || v > math.MaxInt32) {
		return 0, invalid(f.Name, "a whole number")
	}
	return v, nil
}

func isWhole(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}
