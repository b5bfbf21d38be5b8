// Package storage persists the budgetku snapshot. Every adapter stores the
// whole state under a single key and loads it back wholesale.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

// DefaultKey names the snapshot when none is configured.
const DefaultKey = "budgetku"

var (
	ErrNoSnapshot      = errors.New("no snapshot stored")
	ErrCorruptSnapshot = errors.New("snapshot cannot be decoded")
)

// Repository is the persistence port used by the store's owner.
type Repository interface {
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, state core.State) error
	Close() error
}

// envelope mirrors the layout written by the mobile app: the state under
// "state" plus a schema version.
type envelope struct {
	State   *core.State `json:"state"`
	Version int         `json:"version"`
}

// Encode serializes a snapshot.
func Encode(state core.State) ([]byte, error) {
	b, err := json.Marshal(envelope{State: &state, Version: 0})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode reads either an enveloped snapshot or a bare state object.
func Decode(data []byte) (core.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return core.State{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if env.State != nil {
		env.State.Normalize()
		return *env.State, nil
	}
	var st core.State
	if err := json.Unmarshal(data, &st); err != nil {
		return core.State{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	st.Normalize()
	return st, nil
}

// Rehydrate loads the stored snapshot. A missing or unreadable snapshot is
// logged and replaced by a fresh default state, so startup never fails here.
func Rehydrate(ctx context.Context, repo Repository, now time.Time, logger *log.Logger) core.State {
	logger = logger.WithComponent(log.ComponentStorage)
	st, err := repo.Load(ctx)
	switch {
	case err == nil:
		logger.Info("Snapshot loaded",
			"transactions", len(st.Transactions),
			"tags", len(st.Tags),
			"budget_months", len(st.Budgets))
		return st
	case errors.Is(err, ErrNoSnapshot):
		logger.Info("No snapshot found, starting fresh")
	default:
		logger.Error("Failed to load snapshot, starting fresh",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
	}
	return core.NewState(now)
}
