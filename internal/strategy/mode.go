package strategy

import (
	"time"

	"PriceSentinel/internal/calendar"
	"PriceSentinel/internal/model"
)

// ModeRules holds the time-based inputs of mode selection.
type ModeRules struct {
	Location      *time.Location
	SummaryWindow calendar.Window
	PulseCadence  time.Duration // heartbeat period, aligned to midnight
	PulseWindow   time.Duration // how long after each beat a run still pulses
}

// SelectMode decides which message, if any, a run should send.
//
// Priority: the session-close summary, then a live alert, then the periodic
// pulse. Anything else is suppressed.
func SelectMode(now time.Time, sig model.Signal, rules ModeRules) model.MessageMode {
	local := now
	if rules.Location != nil {
		local = now.In(rules.Location)
	}
	clock := calendar.ClockOf(local)

	switch {
	case rules.SummaryWindow.Contains(clock):
		return model.ModeSummary
	case sig.Triggered():
		return model.ModeAlert
	case inPulse(clock, rules):
		return model.ModePulse
	default:
		return model.ModeSuppressed
	}
}

func inPulse(clock calendar.TimeOfDay, rules ModeRules) bool {
	cadence := int(rules.PulseCadence / time.Minute)
	window := int(rules.PulseWindow / time.Minute)
	if cadence <= 0 || window <= 0 {
		return false
	}
	return clock.Minutes()%cadence < window
}
