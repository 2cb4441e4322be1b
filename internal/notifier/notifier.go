package notifier

import (
	"context"
	"errors"
	"fmt"

	"PriceSentinel/internal/model"
)

// ErrMissingCredential is returned when no token is configured. Callers
// treat it as "nothing to do" rather than a delivery failure.
var ErrMissingCredential = errors.New("notifier credential not configured")

// Notifier delivers a composed message to a topic or chat.
type Notifier interface {
	Send(ctx context.Context, topic string, msg model.Message) error
	Name() string
}

// DeliveryError reports a relay that was unreachable or rejected the message.
type DeliveryError struct {
	Backend    string
	StatusCode int
	Reason     string
	Err        error
}

func (e *DeliveryError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s delivery: %v", e.Backend, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s delivery: status %d: %s", e.Backend, e.StatusCode, e.Reason)
	default:
		return fmt.Sprintf("%s delivery: %s", e.Backend, e.Reason)
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }
