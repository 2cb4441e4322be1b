package model

import "github.com/shopspring/decimal"

// Direction is the side a signal points to.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBuy
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "none"
	}
}

// Signal is the output of the signal engine for one quote.
// Direction is DirectionNone exactly when Level is 0; Rate and Advice are
// only meaningful for a triggered signal.
type Signal struct {
	Direction Direction
	Level     int
	Rate      decimal.Decimal
	Advice    string

	Drawdown  decimal.Decimal // from the day high, <= 0 in normal markets
	Rebound   decimal.Decimal // from the day low, >= 0 in normal markets
	DayChange decimal.Decimal // from the open
}

// Triggered reports whether a tier matched.
func (s Signal) Triggered() bool {
	return s.Direction != DirectionNone
}
