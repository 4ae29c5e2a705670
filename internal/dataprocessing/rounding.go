package dataprocessing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, half to even
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

// RoundTo rounds v to places decimals using banker's rounding on the
// shortest decimal form of v. NaN and infinities are returned unchanged.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}
