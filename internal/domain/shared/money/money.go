package money

import "math"

// Amount is a monetary value in whole currency units. Percentages are the
// only source of fractions in the pricing rules, so results are rounded to
// the nearest unit at the point they are produced.
type Amount int64

// Percent returns pct% of a, rounded to the nearest whole unit.
func Percent(a Amount, pct float64) Amount {
	return Amount(math.Round(float64(a) * pct / 100))
}

// Scale multiplies a by factor, rounded to the nearest whole unit.
func Scale(a Amount, factor float64) Amount {
	return Amount(math.Round(float64(a) * factor))
}

// IsZero returns true if the amount equals zero.
func (a Amount) IsZero() bool {
	return a == 0
}
