package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the canonical price record built from one upstream feed payload.
// All four prices are strictly positive once normalized.
type Quote struct {
	Symbol    string
	Current   decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Open      decimal.Decimal
	FetchedAt time.Time
}
