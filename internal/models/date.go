package models

import (
	"strings"
	"time"
)

// DateLayout is the wire layout for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date ("2006-01-02") or an RFC 3339 timestamp and
// returns the calendar day at midnight UTC. The boolean is false when the value
// is empty or cannot be parsed; callers treat such values as absent.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, ok := parseRFC3339(s); ok {
		return Day(t), true
	}
	return time.Time{}, false
}

// ParseOptionalDate is ParseDate for nullable fields.
func ParseOptionalDate(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return ParseDate(*s)
}

// ParseTimestamp parses an RFC 3339 timestamp, falling back to a calendar date.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := parseRFC3339(s); ok {
		return t.UTC(), true
	}
	return ParseDate(s)
}

func parseRFC3339(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// Browsers emit "2024-05-01T10:00:00" without a zone for local inputs.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Day strips the time of day, keeping the calendar date of t in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as a wire calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddMonths adds n calendar months to t, clamping to the last day of the target
// month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
