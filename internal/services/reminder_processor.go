package services

import (
	"context"
	"sync"
	"time"

	"budgetku/internal/core"
	"budgetku/internal/log"
	"budgetku/internal/notify"
)

// ReminderSource provides the notification toggles, the current time and
// the persisted send times. *store.Store satisfies it.
type ReminderSource interface {
	NotificationSettings() core.NotificationSettings
	Now() time.Time
	ReminderSent(kind string) time.Time
	MarkReminderSent(kind string, at time.Time)
}

// Sender queues a notification without blocking.
type Sender interface {
	Send(n notify.Notification)
}

// ReminderProcessor sends the daily reminder and weekly report when their
// toggles are on and their strategies say they are due.
type ReminderProcessor struct {
	settings ReminderSource
	sender   Sender
	logger   *log.Logger

	mu sync.Mutex
}

func NewReminderProcessor(settings ReminderSource, sender Sender, logger *log.Logger) *ReminderProcessor {
	return &ReminderProcessor{
		settings: settings,
		sender:   sender,
		logger:   logger.WithComponent(log.ComponentReminder),
	}
}

// ProcessDue sends every reminder due at now and returns how many were sent.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, now time.Time) int {
	s := p.settings.NotificationSettings()
	candidates := []struct {
		kind    notify.Kind
		enabled bool
		build   func(time.Time) notify.Notification
	}{
		{notify.KindDailyReminder, s.DailyReminder, notify.DailyReminder},
		{notify.KindWeeklyReport, s.WeeklyReport, notify.WeeklyReport},
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sent := 0
	for _, c := range candidates {
		if !c.enabled {
			continue
		}
		checker, err := GetReminderChecker(c.kind)
		if err != nil {
			p.logger.ErrorContext(ctx, "No reminder strategy", log.FieldKind, string(c.kind), log.FieldError, err)
			continue
		}
		if !checker.IsDue(p.settings.ReminderSent(string(c.kind)), now) {
			continue
		}
		p.sender.Send(c.build(now))
		p.settings.MarkReminderSent(string(c.kind), now)
		sent++
		p.logger.InfoContext(ctx, "Reminder sent", log.FieldKind, string(c.kind))
	}
	return sent
}

// Run checks for due reminders on every tick until ctx is done.
func (p *ReminderProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.ProcessDue(ctx, p.settings.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.ProcessDue(ctx, p.settings.Now())
		}
	}
}
