// Package money implements fixed-point monetary arithmetic in integer
// minor units. Amounts never touch floating point so per-line rounding
// cannot drift across an invoice.
package money

import (
	"fmt"
)

// Amount is a monetary value in minor units (cents for two-decimal
// currencies).
type Amount int64

// Rate is a percentage expressed in basis points: 100 bps = 1%.
type Rate int64

const rateScale = 10000

// Tolerance is the maximum allowed divergence, in minor units, between
// a declared amount and one derived from a rate.
const Tolerance = 1

// Apply computes r of a, rounding half-up away from zero.
func (r Rate) Apply(a Amount) Amount {
	product := int64(a) * int64(r)
	if product >= 0 {
		return Amount((product + rateScale/2) / rateScale)
	}
	return Amount((product - rateScale/2) / rateScale)
}

// Mul multiplies a unit amount by a quantity.
func Mul(rate Amount, quantity int64) Amount {
	return Amount(int64(rate) * quantity)
}

// WithinTolerance reports whether two amounts agree within Tolerance.
func WithinTolerance(a, b Amount) bool {
	diff := int64(a) - int64(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= Tolerance
}

// String formats the amount as a two-decimal string for error
// messages; the wire format everywhere else is int64 minor units.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
