package collector

import (
	"context"
	"fmt"
	"time"
)

// FieldLayout maps quote fields to positions in the comma-separated payload.
type FieldLayout struct {
	Marker  string // variable name that precedes the quoted field list
	Current int
	High    int
	Low     int
	Open    int
}

// RawQuote is an unparsed feed response.
type RawQuote struct {
	Symbol    string
	Body      string
	Layout    FieldLayout
	FetchedAt time.Time
}

// QuoteSource fetches one raw quote per call.
type QuoteSource interface {
	Fetch(ctx context.Context) (RawQuote, error)
	Name() string
}

// FetchError reports a network failure, timeout or non-200 response.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch: status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
