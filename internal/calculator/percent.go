package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PercentPlaces is the rounding applied to every derived percentage.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// ErrZeroBase is returned when the reference price is zero.
var ErrZeroBase = errors.New("reference price is zero")

// PercentChange returns (to-from)/from*100 rounded to two decimal places.
func PercentChange(from, to decimal.Decimal) (decimal.Decimal, error) {
	if from.IsZero() {
		return decimal.Zero, ErrZeroBase
	}
	return to.Sub(from).Div(from).Mul(hundred).Round(PercentPlaces), nil
}

// Drawdown is the percentage move of current from the day high.
func Drawdown(current, high decimal.Decimal) (decimal.Decimal, error) {
	return PercentChange(high, current)
}

// Rebound is the percentage move of current from the day low.
func Rebound(current, low decimal.Decimal) (decimal.Decimal, error) {
	return PercentChange(low, current)
}

// DayChange is the percentage move of current from the open.
func DayChange(current, open decimal.Decimal) (decimal.Decimal, error) {
	return PercentChange(open, current)
}
