package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

// AutoSaver persists snapshots in the background. Enqueue never blocks:
// when saves fall behind only the latest snapshot is written. Failures are
// logged and counted, never returned to the mutation that caused them.
type AutoSaver struct {
	repo   Repository
	logger *log.Logger

	mu     sync.Mutex
	latest *core.State
	saveMu sync.Mutex

	signal    chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	saves    atomic.Uint64
	failures atomic.Uint64
}

func NewAutoSaver(repo Repository, logger *log.Logger) *AutoSaver {
	a := &AutoSaver{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentStorage),
		signal: make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Enqueue schedules state to be written, replacing any unsaved snapshot.
func (a *AutoSaver) Enqueue(state core.State) {
	a.mu.Lock()
	a.latest = &state
	a.mu.Unlock()

	select {
	case a.signal <- struct{}{}:
	default:
	}
}

func (a *AutoSaver) run() {
	defer close(a.done)
	for {
		select {
		case <-a.signal:
			_ = a.Flush(context.Background())
		case <-a.quit:
			return
		}
	}
}

// Flush writes the pending snapshot, if any, and waits for it.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	st := a.latest
	a.latest = nil
	a.mu.Unlock()

	if st == nil {
		return nil
	}
	if err := a.repo.Save(ctx, *st); err != nil {
		a.failures.Add(1)
		a.logger.Error("Failed to persist snapshot",
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
		return err
	}
	a.saves.Add(1)
	return nil
}

// Close stops the background writer and flushes what is left.
func (a *AutoSaver) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		close(a.quit)
		<-a.done
		err = a.Flush(ctx)
	})
	return err
}

// Saves and Failures count completed and failed writes.
func (a *AutoSaver) Saves() uint64    { return a.saves.Load() }
func (a *AutoSaver) Failures() uint64 { return a.failures.Load() }
