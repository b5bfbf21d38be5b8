// Package notify turns store events and reminders into user notifications
// and hands them to a delivery adapter.
package notify

import (
	"context"
	"time"

	"budgetku/internal/core"
)

// Kind identifies what a notification is about.
type Kind string

const (
	KindOverspending  Kind = "overspending"
	KindDailyReminder Kind = "daily_reminder"
	KindWeeklyReport  Kind = "weekly_report"
)

const (
	overspendTitle = "Budget Alert: Overspending"
	overspendBody  = "You've spent more than 90% of your budget for this period! Be careful with your remaining spending."
	dailyTitle     = "Daily Spending Reminder"
	dailyBody      = "Have you tracked all your expenses for today? Stay within your daily limit to meet your monthly budget!"
	weeklyTitle    = "Weekly Spending Report"
	weeklyBody     = "Your weekly spending report is ready. Open the app to review your progress!"
)

type Notification struct {
	Kind      Kind
	Title     string
	Body      string
	Overspend *core.Overspend
	CreatedAt time.Time
}

// Notifier delivers a notification immediately.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

func Overspending(o core.Overspend, at time.Time) Notification {
	return Notification{Kind: KindOverspending, Title: overspendTitle, Body: overspendBody, Overspend: &o, CreatedAt: at}
}

func DailyReminder(at time.Time) Notification {
	return Notification{Kind: KindDailyReminder, Title: dailyTitle, Body: dailyBody, CreatedAt: at}
}

func WeeklyReport(at time.Time) Notification {
	return Notification{Kind: KindWeeklyReport, Title: weeklyTitle, Body: weeklyBody, CreatedAt: at}
}
