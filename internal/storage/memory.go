package storage

import (
	"context"
	"sync"

	"budgetku/internal/core"
)

// MemoryRepository keeps the snapshot in process. Nothing survives a restart.
type MemoryRepository struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (core.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return core.State{}, ErrNoSnapshot
	}
	return Decode(r.data)
}

// Save stores an encoded copy so later mutations of state cannot leak in.
func (r *MemoryRepository) Save(_ context.Context, state core.State) error {
	b, err := Encode(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = b
	r.saves++
	return nil
}

// Saves returns how many snapshots were written.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *MemoryRepository) Close() error { return nil }
