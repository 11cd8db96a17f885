// Package measure holds the measurement kinds a challenge can be configured
// with and the feet+inches unit conversion used by the composite kind.
package measure

import "math"

const inchesPerFoot = 12

// ToScalar normalizes a feet+inches pair to total inches.
// Negative inputs are rejected by validation before they reach here.
func ToScalar(feet int, inches float64) float64 {
	return float64(feet)*inchesPerFoot + inches
}

// FromScalar splits total inches back into whole feet and whole inches.
// It truncates, so it is lossy for fractional inches: use it for display only,
// never to rebuild a stored value.
func FromScalar(scalar float64) (feet, inches int) {
	feet = int(math.Floor(scalar / inchesPerFoot))
	inches = int(math.Floor(math.Mod(scalar, inchesPerFoot)))
	return feet, inches
}
