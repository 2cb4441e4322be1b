package model

import "time"

// MessageMode decides which kind of notification a run emits.
type MessageMode int

const (
	ModeSuppressed MessageMode = iota
	ModeAlert
	ModePulse
	ModeSummary
)

func (m MessageMode) String() string {
	switch m {
	case ModeAlert:
		return "alert"
	case ModePulse:
		return "pulse"
	case ModeSummary:
		return "summary"
	default:
		return "suppressed"
	}
}

// Theme tags the visual style of a message.
type Theme string

const (
	ThemeBuyGreen    Theme = "buy_green"
	ThemeSellRed     Theme = "sell_red"
	ThemePulseBlue   Theme = "pulse_blue"
	ThemeSummaryGold Theme = "summary_gold"
)

// Color returns the hex color renderers use for the theme.
func (t Theme) Color() string {
	switch t {
	case ThemeBuyGreen:
		return "#52c41a"
	case ThemeSellRed:
		return "#ff4d4f"
	case ThemeSummaryGold:
		return "#faad14"
	default:
		return "#1890ff"
	}
}

// Field is one labelled line of a message body.
type Field struct {
	Label string
	Value string
}

// Message is a renderer-agnostic notification payload.
type Message struct {
	Mode     MessageMode
	Title    string
	Headline string
	Theme    Theme
	Fields   []Field
	SentAt   time.Time
}
