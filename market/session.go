package market

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in the session timezone.
type Clock struct {
	Hour int
	Min  int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Min); err != nil {
		return Clock{}, fmt.Errorf("bad clock %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Min < 0 || c.Min > 59 {
		return Clock{}, fmt.Errorf("bad clock %q: out of range", s)
	}
	return c, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Min)
}

// On places the clock on the given calendar date in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, c.Hour, c.Min, 0, 0, loc)
}

// Session describes the trading day: exchange timezone, regular close,
// and the half-day calendar. Half days come from configuration only,
// never from gaps in the data.
type Session struct {
	loc         *time.Location
	closeAt     Clock
	halfCloseAt Clock
	halfDays    map[string]struct{}
}

func NewSession(tz string, closeAt, halfCloseAt Clock, halfDays []string) (*Session, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load session timezone: %w", err)
	}
	hd := make(map[string]struct{}, len(halfDays))
	for _, d := range halfDays {
		if _, err := time.ParseInLocation("2006-01-02", d, loc); err != nil {
			return nil, fmt.Errorf("bad half-day date %q: %w", d, err)
		}
		hd[d] = struct{}{}
	}
	return &Session{loc: loc, closeAt: closeAt, halfCloseAt: halfCloseAt, halfDays: hd}, nil
}

// Location returns the session timezone.
func (s *Session) Location() *time.Location { return s.loc }

// DateKey returns t's calendar date in the session timezone, formatted
// 2006-01-02. All per-day grouping uses this key.
func (s *Session) DateKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// IsHalfDay reports whether the date closes early.
func (s *Session) IsHalfDay(date time.Time) bool {
	_, ok := s.halfDays[s.DateKey(date)]
	return ok
}

// End returns the session-end timestamp for the date, honoring the
// half-day calendar.
func (s *Session) End(date time.Time) time.Time {
	if s.IsHalfDay(date) {
		return s.halfCloseAt.On(date, s.loc)
	}
	return s.closeAt.On(date, s.loc)
}
