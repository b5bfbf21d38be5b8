// Package services schedules the periodic reminders.
//
// Each reminder kind has its own strategy deciding whether it is due given
// when it was last sent. Strategies are looked up in a registry so new
// kinds can be added without touching the processor.
package services

import (
	"fmt"
	"sync"
	"time"

	"budgetku/internal/core"
	"budgetku/internal/notify"
)

// ReminderChecker is the strategy interface for reminder due-ness.
type ReminderChecker interface {
	// IsDue reports whether the reminder should fire at now, given the time
	// it was last sent (zero if never).
	IsDue(lastSent, now time.Time) bool
}

// DailyChecker fires once per calendar day, at or after Hour.
type DailyChecker struct {
	Hour int
}

func (c DailyChecker) IsDue(lastSent, now time.Time) bool {
	if now.Hour() < c.Hour {
		return false
	}
	if lastSent.IsZero() {
		return true
	}
	return !core.StartOfDay(lastSent.In(now.Location())).Equal(core.StartOfDay(now))
}

// WeeklyChecker fires once per week on Weekday, at or after Hour.
type WeeklyChecker struct {
	Weekday time.Weekday
	Hour    int
}

func (c WeeklyChecker) IsDue(lastSent, now time.Time) bool {
	if now.Weekday() != c.Weekday || now.Hour() < c.Hour {
		return false
	}
	if lastSent.IsZero() {
		return true
	}
	lastWeek, _ := core.WeekBounds(lastSent.In(now.Location()))
	thisWeek, _ := core.WeekBounds(now)
	return !lastWeek.Equal(thisWeek)
}

var (
	strategiesMu sync.RWMutex
	strategies   = map[notify.Kind]ReminderChecker{
		notify.KindDailyReminder: DailyChecker{Hour: 20},
		notify.KindWeeklyReport:  WeeklyChecker{Weekday: time.Monday, Hour: 9},
	}
)

// GetReminderChecker returns the strategy registered for kind.
func GetReminderChecker(kind notify.Kind) (ReminderChecker, error) {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	c, ok := strategies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reminder kind: %s", kind)
	}
	return c, nil
}

// RegisterReminderChecker installs or replaces the strategy for kind.
func RegisterReminderChecker(kind notify.Kind, c ReminderChecker) {
	strategiesMu.Lock()
	defer strategiesMu.Unlock()
	strategies[kind] = c
}
