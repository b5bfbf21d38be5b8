// Package worker holds the consumer side of the notification queue.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"budgetku/internal/amqp"
	"budgetku/internal/cache"
	"budgetku/internal/log"
	"budgetku/internal/notify"
)

const (
	seenCapacity = 1024
	seenTTL      = time.Hour
)

// NotificationWorker delivers queued notification messages. Redelivered
// messages whose ID was already delivered within the last hour are acked
// without delivering them again.
type NotificationWorker struct {
	notifier notify.Notifier
	logger   *log.Logger
	seen     *cache.LRUCache[struct{}]

	delivered  atomic.Uint64
	duplicates atomic.Uint64
}

func NewNotificationWorker(n notify.Notifier, logger *log.Logger) *NotificationWorker {
	return &NotificationWorker{
		notifier: n,
		logger:   logger.WithComponent(log.ComponentWorker),
		seen:     cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
	}
}

// Seen exposes the dedup cache so it can be registered with a cache.Manager.
func (w *NotificationWorker) Seen() *cache.LRUCache[struct{}] { return w.seen }

// HandleNotificationMessage processes a single notification message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *NotificationWorker) HandleNotificationMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.ID != "" {
		if _, ok := w.seen.Get(msg.ID); ok {
			w.duplicates.Add(1)
			w.logger.DebugContext(ctx, "Skipping duplicate notification", "id", msg.ID)
			return nil
		}
	}

	w.logger.InfoContext(ctx, "Processing notification message",
		"id", msg.ID,
		log.FieldKind, msg.Kind)

	if err := w.notifier.Notify(ctx, notify.FromMessage(msg)); err != nil {
		return fmt.Errorf("deliver notification %s: %w", msg.ID, err)
	}

	if msg.ID != "" {
		w.seen.Set(msg.ID, struct{}{})
	}
	w.delivered.Add(1)
	return nil
}

// Stats reports delivered and duplicate counts.
func (w *NotificationWorker) Stats() (delivered, duplicates uint64) {
	return w.delivered.Load(), w.duplicates.Load()
}
