package worker

import (
	"context"
	"errors"
	"testing"

	"budgetku/internal/amqp"
	"budgetku/internal/log"
	"budgetku/internal/notify"
)

type recordingNotifier struct {
	got []notify.Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, n)
	return nil
}

func TestHandleNotificationMessage(t *testing.T) {
	rec := &recordingNotifier{}
	w := NewNotificationWorker(rec, log.Nop())

	msg := amqp.NewNotificationMessage("overspending", "Budget Alert: Overspending", "body")
	msg.Month = "2024-09"
	msg.Spent = 95
	msg.Budget = 100

	if err := w.HandleNotificationMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(rec.got))
	}
	got := rec.got[0]
	if got.Kind != notify.KindOverspending || got.Overspend == nil || got.Overspend.Spent != 95 {
		t.Errorf("unexpected notification %+v", got)
	}

	// redelivery of the same message
	if err := w.HandleNotificationMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	delivered, dups := w.Stats()
	if delivered != 1 || dups != 1 {
		t.Errorf("Stats() = %d, %d; want 1, 1", delivered, dups)
	}
}

func TestHandleNotificationMessageFailure(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("smtp down")}
	w := NewNotificationWorker(rec, log.Nop())

	msg := amqp.NewNotificationMessage("daily_reminder", "Daily Spending Reminder", "body")
	if err := w.HandleNotificationMessage(context.Background(), msg); err == nil {
		t.Fatal("expected delivery error")
	}

	// a failed delivery must not be remembered as seen
	rec.err = nil
	if err := w.HandleNotificationMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if len(rec.got) != 1 {
		t.Fatalf("expected retry to deliver, got %d", len(rec.got))
	}
}
