// Package store holds the budgetku state: transactions, tags, budgets and
// preferences. All mutations and queries are synchronous. Side effects such
// as persistence and notifications are left to handlers registered with
// OnChange and OnOverspend, which run after the store lock is released.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetku/internal/cache"
	"budgetku/internal/core"
	"budgetku/internal/log"
)

var (
	ErrDuplicateTag = errors.New("tag already exists")
)

// Operation names carried by change events.
const (
	OpAddTransaction     = "add_transaction"
	OpEditTransaction    = "edit_transaction"
	OpDeleteTransaction  = "delete_transaction"
	OpSetBudget          = "set_budget"
	OpRemoveBudget       = "remove_budget"
	OpAddTag             = "add_tag"
	OpEditTag            = "edit_tag"
	OpDeleteTag          = "delete_tag"
	OpInitializeTags     = "initialize_tags"
	OpSetCurrency        = "set_currency"
	OpSetPeriod          = "set_period"
	OpUpdateNotification = "update_notifications"
	OpMarkReminder       = "mark_reminder"
)

// ChangeEvent is emitted after every mutation that changed state.
// Snapshot is a private copy and may be kept by the handler.
type ChangeEvent struct {
	Op       string
	Version  uint64
	Snapshot core.State
}

type (
	ChangeHandler    func(ChangeEvent)
	OverspendHandler func(core.Overspend)
)

type Store struct {
	mu      sync.RWMutex
	state   core.State
	version uint64
	lastID  int64

	now       func() time.Time
	loc       *time.Location
	newColor  func() string
	validate  core.Validator
	analytics cache.Cache[core.Analytics]
	logger    *log.Logger

	hmu         sync.RWMutex
	onChange    []ChangeHandler
	onOverspend []OverspendHandler
}

type Option func(*Store)

// WithClock sets the time source used for IDs and the current month.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone used to read dates stored without an offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithColorFunc replaces the random color generator for new tags.
func WithColorFunc(fn func() string) Option {
	return func(s *Store) { s.newColor = fn }
}

// WithValidator installs a check run on every added or edited transaction.
func WithValidator(v core.Validator) Option {
	return func(s *Store) { s.validate = v }
}

// WithAnalyticsCache memoizes Analytics results per state version.
func WithAnalyticsCache(c cache.Cache[core.Analytics]) Option {
	return func(s *Store) { s.analytics = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

// New builds a store from a snapshot. The snapshot is copied.
func New(initial core.State, opts ...Option) *Store {
	s := &Store{
		state:    initial.Clone(),
		now:      time.Now,
		loc:      time.UTC,
		newColor: core.RandomColor,
		logger:   log.Nop().WithComponent(log.ComponentStore),
	}
	s.state.Normalize()
	for _, opt := range opts {
		opt(s)
	}
	for _, tx := range s.state.Transactions {
		if tx.ID > s.lastID {
			s.lastID = tx.ID
		}
	}
	return s
}

// OnChange registers a handler for state changes. Handlers must not block.
func (s *Store) OnChange(h ChangeHandler) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.onChange = append(s.onChange, h)
}

// OnOverspend registers a handler for overspending warnings. Handlers must not block.
func (s *Store) OnOverspend(h OverspendHandler) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.onOverspend = append(s.onOverspend, h)
}

// Location is the zone used for dates without an offset.
func (s *Store) Location() *time.Location { return s.loc }

// Now returns the store clock in the store location.
func (s *Store) Now() time.Time { return s.now().In(s.loc) }

// Version increases by one on every state change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a deep copy of the full state.
func (s *Store) Snapshot() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

type pending struct {
	change    *ChangeEvent
	overspend *core.Overspend
}

// mutate runs fn under the write lock. fn reports whether it changed state.
// When check is set the overspending rule is evaluated afterwards, even if
// nothing changed. Events are emitted once the lock is released.
func (s *Store) mutate(op string, check bool, fn func() (bool, error)) error {
	p, err := s.apply(op, check, fn)
	if err != nil {
		return err
	}
	if p.change != nil {
		s.logger.Debug("State mutated", log.FieldOperation, op, log.FieldVersion, p.change.Version)
	}
	s.emit(p)
	return nil
}

func (s *Store) apply(op string, check bool, fn func() (bool, error)) (pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p pending
	changed, err := fn()
	if err != nil {
		return p, err
	}
	if changed {
		s.version++
		s.state.CurrentDate = s.now().UTC().Format(time.RFC3339Nano)
		p.change = &ChangeEvent{Op: op, Version: s.version, Snapshot: s.state.Clone()}
	}
	if check {
		p.overspend = s.checkOverspend()
	}
	return p, nil
}

func (s *Store) emit(p pending) {
	s.hmu.RLock()
	change := append([]ChangeHandler(nil), s.onChange...)
	over := append([]OverspendHandler(nil), s.onOverspend...)
	s.hmu.RUnlock()

	if p.change != nil {
		for _, h := range change {
			s.safely("change", func() { h(*p.change) })
		}
	}
	if p.overspend != nil {
		for _, h := range over {
			s.safely("overspend", func() { h(*p.overspend) })
		}
	}
}

// safely keeps a failing handler from breaking the mutation that triggered it.
func (s *Store) safely(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Event handler panicked", log.FieldKind, kind, log.FieldError, fmt.Sprint(r))
		}
	}()
	fn()
}

// nextID hands out creation-time milliseconds, strictly increasing.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
