package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Period is a named window size used to filter and aggregate transactions.
type Period string

// Window is an inclusive [Start, End] range with millisecond resolution.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidMonth  = errors.New("invalid month")
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// ParsePeriod accepts day, week or month in any case.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Contains reports whether t falls inside the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	t = t.Truncate(time.Millisecond)
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowFor computes the window of period p anchored at ref, in ref's location.
//
//	day:   00:00:00.000 .. 23:59:59.999 of ref's day
//	week:  Monday 00:00:00.000 .. Sunday 23:59:59.999 of ref's week
//	month: 1st 00:00:00.000 .. last day 23:59:59.999 of ref's month
func WindowFor(p Period, ref time.Time) (Window, error) {
	var start, next time.Time
	switch p {
	case PeriodDay:
		start = StartOfDay(ref)
		next = start.AddDate(0, 0, 1)
	case PeriodWeek:
		start, _ = WeekBounds(ref)
		next = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		next = start.AddDate(0, 1, 0)
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return Window{Start: start, End: next.Add(-time.Millisecond)}, nil
}

// WeekBounds returns Monday 00:00:00.000 and Sunday 23:59:59.999 of the
// week containing t. Monday always starts the week.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	offset := (int(t.Weekday()) + 6) % 7
	day := StartOfDay(t)
	monday = time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, t.Location())
	sunday = monday.AddDate(0, 0, 7).Add(-time.Millisecond)
	return monday, sunday
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var zonedLayouts = []string{
	time.RFC3339Nano,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate reads an ISO-8601 timestamp. Values carrying an offset keep it;
// values without one are interpreted in loc (UTC when nil).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders t the way transaction dates are stored.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}
