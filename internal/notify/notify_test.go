package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetku/internal/amqp"
	"budgetku/internal/core"
	"budgetku/internal/log"
)

type recorder struct {
	mu    sync.Mutex
	got   []Notification
	err   error
	block chan struct{}
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}

var at = time.Date(2024, 9, 15, 20, 0, 0, 0, time.UTC)

func TestDispatcherDeliversInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, log.Nop(), WithDispatchClock(func() time.Time { return at }))

	d.HandleOverspend(core.Overspend{Month: "2024-09", Spent: 95, Budget: 100})
	d.Send(DailyReminder(at))
	require.NoError(t, d.Close(context.Background()))

	got := rec.all()
	require.Len(t, got, 2)
	assert.Equal(t, KindOverspending, got[0].Kind)
	assert.Equal(t, "Budget Alert: Overspending", got[0].Title)
	assert.Equal(t, at, got[0].CreatedAt)
	assert.Equal(t, core.Month("2024-09"), got[0].Overspend.Month)
	assert.Equal(t, "Daily Spending Reminder", got[1].Title)

	sent, failed, dropped := d.Stats()
	assert.Equal(t, [3]uint64{2, 0, 0}, [3]uint64{sent, failed, dropped})
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("scheduler unavailable")}
	d := NewDispatcher(rec, log.Nop())
	d.Send(WeeklyReport(at))
	require.NoError(t, d.Close(context.Background()))

	_, failed, _ := d.Stats()
	assert.Equal(t, uint64(1), failed)
}

func TestDispatcherDropsWhenFullOrClosed(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	d := NewDispatcher(rec, log.Nop(), WithQueueSize(1))

	for i := 0; i < 5; i++ {
		d.Send(DailyReminder(at))
	}
	close(rec.block)
	require.NoError(t, d.Close(context.Background()))
	d.Send(DailyReminder(at))

	sent, _, dropped := d.Stats()
	assert.Equal(t, uint64(6), sent+dropped)
	assert.GreaterOrEqual(t, dropped, uint64(4))
}

type fakePublisher struct {
	msgs []*amqp.NotificationMessage
}

func (f *fakePublisher) PublishNotification(_ context.Context, m *amqp.NotificationMessage) error {
	f.msgs = append(f.msgs, m)
	return nil
}

func TestAMQPNotifierRoundTrip(t *testing.T) {
	pub := &fakePublisher{}
	n := NewAMQPNotifier(pub)

	orig := Overspending(core.Overspend{Month: "2024-09", Spent: 950, Budget: 1000}, at)
	require.NoError(t, n.Notify(context.Background(), orig))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "overspending", pub.msgs[0].Kind)
	assert.NotEmpty(t, pub.msgs[0].ID)

	back := FromMessage(pub.msgs[0])
	assert.Equal(t, orig, back)

	plain := FromMessage(ToMessage(WeeklyReport(at)))
	assert.Nil(t, plain.Overspend)
	assert.Equal(t, KindWeeklyReport, plain.Kind)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(log.Nop())
	assert.NoError(t, n.Notify(context.Background(), Overspending(core.Overspend{Month: "2024-09"}, at)))
}
