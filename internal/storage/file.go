package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"budgetku/internal/core"
)

// FileRepository writes the snapshot to <dir>/<key>.json. Writes go to a
// temporary file first and are renamed into place, so a crash mid-write
// leaves the previous snapshot intact.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileRepository(dir, key string) (*FileRepository, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileRepository{path: filepath.Join(dir, key+".json")}, nil
}

// Path is the snapshot file location.
func (r *FileRepository) Path() string { return r.path }

func (r *FileRepository) Load(_ context.Context) (core.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.State{}, ErrNoSnapshot
	}
	if err != nil {
		return core.State{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(b)
}

func (r *FileRepository) Save(_ context.Context, state core.State) error {
	b, err := Encode(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (r *FileRepository) Close() error { return nil }
