package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

const defaultQueueSize = 32

// Dispatcher delivers notifications on a background goroutine so that
// callers, typically store event handlers, never block. When the queue is
// full the notification is dropped. Delivery errors are logged and swallowed.
type Dispatcher struct {
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
	timeout  time.Duration

	queue  chan Notification
	done   chan struct{}
	mu     sync.RWMutex
	closed bool

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

type DispatcherOption func(*Dispatcher)

func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Notification, n)
		}
	}
}

func WithDispatchClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(n Notifier, logger *log.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		logger:   logger.WithComponent(log.ComponentNotify),
		now:      time.Now,
		timeout:  10 * time.Second,
		queue:    make(chan Notification, defaultQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Send queues a notification without blocking.
func (d *Dispatcher) Send(n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	select {
	case d.queue <- n:
	default:
		d.dropped.Add(1)
		d.logger.Warn("Notification queue full, dropping", log.FieldKind, string(n.Kind))
	}
}

// HandleOverspend adapts the dispatcher to store overspend events.
func (d *Dispatcher) HandleOverspend(o core.Overspend) {
	d.Send(Overspending(o, d.now()))
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, n); err != nil {
		d.failed.Add(1)
		d.logger.Error("Failed to deliver notification",
			log.FieldOperation, log.OpNotify,
			log.FieldKind, string(n.Kind),
			log.FieldError, err)
		return
	}
	d.sent.Add(1)
}

// Close stops accepting notifications and waits for the queue to drain or
// ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats reports sent, failed and dropped counts.
func (d *Dispatcher) Stats() (sent, failed, dropped uint64) {
	return d.sent.Load(), d.failed.Load(), d.dropped.Load()
}
