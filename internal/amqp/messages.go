package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationMessage is the wire form of a notification request. Kind is
// one of the notify kinds (overspending, daily_reminder, weekly_report).
type NotificationMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Month     string    `json:"month,omitempty"`
	Spent     float64   `json:"spent,omitempty"`
	Budget    float64   `json:"budget,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage stamps a message with a fresh ID and the current time.
func NewNotificationMessage(kind, title, body string) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		Timestamp: time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and sanity-checks a message body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Title == "" {
		return nil, fmt.Errorf("notification message %q missing kind or title", msg.ID)
	}
	return &msg, nil
}
