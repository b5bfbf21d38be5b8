package backend

import (
	"context"
	"path/filepath"
	"testing"

	"budgetku/internal/config"
	"budgetku/internal/log"
	"budgetku/internal/notify"
	"budgetku/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "file", DataDir: "./data", SnapshotKey: "k", Notifier: "log"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != FileBackend || got.DataDirectory != "./data" || got.Notifier != LogNotifier {
		t.Errorf("unexpected config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, repo storage.Repository)
	}{
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, repo storage.Repository) {
				if _, ok := repo.(*storage.MemoryRepository); !ok {
					t.Errorf("expected memory repository, got %T", repo)
				}
			},
		},
		{
			name:   "file",
			config: Config{Type: FileBackend, DataDirectory: dir, SnapshotKey: "test"},
			check: func(t *testing.T, repo storage.Repository) {
				fr, ok := repo.(*storage.FileRepository)
				if !ok {
					t.Fatalf("expected file repository, got %T", repo)
				}
				if fr.Path() != filepath.Join(dir, "test.json") {
					t.Errorf("unexpected path %s", fr.Path())
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "budgetku.db")},
			check: func(t *testing.T, repo storage.Repository) {
				if _, ok := repo.(*storage.SQLiteRepository); !ok {
					t.Errorf("expected sqlite repository, got %T", repo)
				}
			},
		},
	}

	f := NewFactory(log.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			tt.check(t, res.Repository)
			if _, ok := res.Notifier.(*notify.LogNotifier); !ok {
				t.Errorf("expected log notifier by default, got %T", res.Notifier)
			}
		})
	}
}

func TestCreateBackendInvalid(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Error("expected error for invalid backend")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, Notifier: AMQPNotifier}); err == nil {
		t.Error("expected error for amqp notifier without URL")
	}
}
