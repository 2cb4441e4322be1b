package collector

import (
	"context"
	"time"
)

// StaticSource returns a fixed payload, or a fixed error, for development
// and testing.
type StaticSource struct {
	Symbol string
	Body   string
	Layout FieldLayout
	Err    error
	Calls  int
}

func (m *StaticSource) Name() string { return "static" }

func (m *StaticSource) Fetch(_ context.Context) (RawQuote, error) {
	m.Calls++
	if m.Err != nil {
		return RawQuote{}, m.Err
	}
	return RawQuote{Symbol: m.Symbol, Body: m.Body, Layout: m.Layout, FetchedAt: time.Now()}, nil
}
