package notify

import (
	"context"

	"budgetku/internal/amqp"
	"budgetku/internal/core"
	"budgetku/internal/log"
)

// LogNotifier "delivers" notifications by logging them.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	args := []any{log.FieldKind, string(note.Kind), "title", note.Title, "body", note.Body}
	if o := note.Overspend; o != nil {
		args = append(args, log.FieldMonth, string(o.Month), "spent", o.Spent, "budget", o.Budget)
	}
	n.logger.InfoContext(ctx, "Notification", args...)
	return nil
}

// Publisher is the part of the AMQP client used for notifications.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// AMQPNotifier publishes notifications for budgetku-notifier to deliver.
type AMQPNotifier struct {
	pub Publisher
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub}
}

func (n *AMQPNotifier) Notify(ctx context.Context, note Notification) error {
	return n.pub.PublishNotification(ctx, ToMessage(note))
}

// ToMessage converts a notification to its wire form.
func ToMessage(note Notification) *amqp.NotificationMessage {
	msg := amqp.NewNotificationMessage(string(note.Kind), note.Title, note.Body)
	if !note.CreatedAt.IsZero() {
		msg.Timestamp = note.CreatedAt
	}
	if o := note.Overspend; o != nil {
		msg.Month = string(o.Month)
		msg.Spent = o.Spent
		msg.Budget = o.Budget
	}
	return msg
}

// FromMessage rebuilds a notification received from the queue.
func FromMessage(msg *amqp.NotificationMessage) Notification {
	note := Notification{
		Kind:      Kind(msg.Kind),
		Title:     msg.Title,
		Body:      msg.Body,
		CreatedAt: msg.Timestamp,
	}
	if msg.Month != "" {
		note.Overspend = &core.Overspend{Month: core.Month(msg.Month), Spent: msg.Spent, Budget: msg.Budget}
	}
	return note
}
