package core

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a budget key in YYYY-MM form. Build one with ParseMonth or MonthOf.
type Month string

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	if len(s) != len(monthLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month(s), nil
}

// MonthOf returns the calendar month of t in t's own location.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

func (m Month) String() string { return string(m) }

// Window returns the month's inclusive range in loc.
func (m Month) Window(loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(monthLayout, string(m), loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidMonth, m)
	}
	return WindowFor(PeriodMonth, t)
}
