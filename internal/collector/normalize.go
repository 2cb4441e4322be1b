package collector

import (
	"fmt"
	"strings"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// ParseReason classifies why a payload could not be turned into a Quote.
type ParseReason string

const (
	ReasonEmptyPayload ParseReason = "empty_payload"
	ReasonMissingField ParseReason = "missing_field"
	ReasonNotANumber   ParseReason = "not_a_number"
	ReasonNonPositive  ParseReason = "non_positive"
)

// ParseFailure is returned by Normalize for unusable payloads.
type ParseFailure struct {
	Reason ParseReason
	Detail string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse quote: %s: %s", e.Reason, e.Detail)
}

func parseFailure(reason ParseReason, format string, args ...any) *ParseFailure {
	return &ParseFailure{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Normalize parses a raw feed payload into a Quote.
//
// A zero high or low means the session has just opened and nothing has
// traded yet; both fall back to the current price. The open has no such
// substitute, so a zero open makes the whole quote unusable.
func Normalize(raw RawQuote) (model.Quote, error) {
	body := strings.TrimSpace(raw.Body)
	if body == "" {
		return model.Quote{}, parseFailure(ReasonEmptyPayload, "empty response body")
	}

	fields, err := extractFields(body, raw.Layout.Marker)
	if err != nil {
		return model.Quote{}, err
	}

	current, err := field(fields, raw.Layout.Current, "current")
	if err != nil {
		return model.Quote{}, err
	}
	high, err := field(fields, raw.Layout.High, "high")
	if err != nil {
		return model.Quote{}, err
	}
	low, err := field(fields, raw.Layout.Low, "low")
	if err != nil {
		return model.Quote{}, err
	}
	open, err := field(fields, raw.Layout.Open, "open")
	if err != nil {
		return model.Quote{}, err
	}

	if !current.IsPositive() {
		return model.Quote{}, parseFailure(ReasonNonPositive, "current price %s", current)
	}
	if high.IsZero() {
		high = current
	}
	if low.IsZero() {
		low = current
	}
	if !high.IsPositive() || !low.IsPositive() {
		return model.Quote{}, parseFailure(ReasonNonPositive, "high %s low %s", high, low)
	}
	if !open.IsPositive() {
		return model.Quote{}, parseFailure(ReasonNonPositive, "open price %s", open)
	}

	return model.Quote{
		Symbol:    raw.Symbol,
		Current:   current,
		High:      high,
		Low:       low,
		Open:      open,
		FetchedAt: raw.FetchedAt,
	}, nil
}

// extractFields returns the comma-separated list assigned to marker, e.g.
// var hq_str_gds_AU9999="480.12,...";
func extractFields(body, marker string) ([]string, error) {
	payload := body
	if marker != "" {
		key := marker + `="`
		i := strings.Index(body, key)
		if i < 0 {
			return nil, parseFailure(ReasonMissingField, "marker %q not found", marker)
		}
		rest := body[i+len(key):]
		j := strings.IndexByte(rest, '"')
		if j < 0 {
			return nil, parseFailure(ReasonMissingField, "unterminated value for %q", marker)
		}
		payload = rest[:j]
	}
	if strings.TrimSpace(payload) == "" {
		return nil, parseFailure(ReasonEmptyPayload, "no fields for %q", marker)
	}
	return strings.Split(payload, ","), nil
}

func field(fields []string, idx int, name string) (decimal.Decimal, error) {
	if idx < 0 || idx >= len(fields) {
		return decimal.Zero, parseFailure(ReasonMissingField, "%s at index %d, payload has %d fields", name, idx, len(fields))
	}
	tok := strings.TrimSpace(fields[idx])
	if tok == "" {
		return decimal.Zero, parseFailure(ReasonMissingField, "%s at index %d is blank", name, idx)
	}
	v, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, parseFailure(ReasonNotANumber, "%s=%q", name, tok)
	}
	return v, nil
}
