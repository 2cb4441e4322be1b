package calendar

import "time"

// Session is a named trading interval.
type Session struct {
	Name string
	Window
}

// ExcludedWeekday takes a weekday out of trading. When Until is set, the
// part of the day up to and including Until stays open, which lets a night
// session from the previous day run into an otherwise closed day.
type ExcludedWeekday struct {
	Day   time.Weekday
	Until *TimeOfDay
}

// Calendar describes when the instrument trades, in one civil timezone.
type Calendar struct {
	Location *time.Location
	Sessions []Session
	Excluded []ExcludedWeekday
}

// In converts t to the calendar's timezone.
func (c Calendar) In(t time.Time) time.Time {
	if c.Location == nil {
		return t
	}
	return t.In(c.Location)
}

// IsTradingNow reports whether t falls inside a session on a day that is
// not excluded.
func (c Calendar) IsTradingNow(t time.Time) bool {
	local := c.In(t)
	clock := ClockOf(local)

	for _, ex := range c.Excluded {
		if ex.Day != local.Weekday() {
			continue
		}
		if ex.Until == nil || clock.Minutes() > ex.Until.Minutes() {
			return false
		}
	}

	_, ok := c.SessionAt(t)
	return ok
}

// SessionAt returns the first session containing t's time of day.
func (c Calendar) SessionAt(t time.Time) (Session, bool) {
	clock := ClockOf(c.In(t))
	for _, s := range c.Sessions {
		if s.Contains(clock) {
			return s, true
		}
	}
	return Session{}, false
}

// ShanghaiGold returns the Shanghai Gold Exchange calendar: morning,
// afternoon and night sessions, closed from Saturday 02:35 through Sunday.
func ShanghaiGold(loc *time.Location) Calendar {
	cutoff := MustTimeOfDay("02:35")
	return Calendar{
		Location: loc,
		Sessions: []Session{
			{Name: "morning", Window: Window{Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("11:35")}},
			{Name: "afternoon", Window: Window{Start: MustTimeOfDay("13:30"), End: MustTimeOfDay("15:35")}},
			{Name: "night", Window: Window{Start: MustTimeOfDay("20:00"), End: cutoff}},
		},
		Excluded: []ExcludedWeekday{
			{Day: time.Saturday, Until: &cutoff},
			{Day: time.Sunday},
		},
	}
}
