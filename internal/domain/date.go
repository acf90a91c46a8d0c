package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used by seeds, flags and reports.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at midnight UTC. Effective windows
// compare calendar dates only, so every date entering the engine goes through
// here.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s): %w", s, DateLayout, err)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
