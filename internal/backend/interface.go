package backend

import (
	"context"

	"budgetku/internal/notify"
	"budgetku/internal/storage"
)

// BackendType selects where the snapshot lives.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	}
	return false
}

func (t BackendType) String() string { return string(t) }

// NotifierType selects how notifications leave the process.
type NotifierType string

const (
	LogNotifier  NotifierType = "log"
	AMQPNotifier NotifierType = "amqp"
)

func (t NotifierType) IsValid() bool {
	return t == LogNotifier || t == AMQPNotifier
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult bundles the adapters chosen for a process.
type BackendResult struct {
	Repository storage.Repository
	Notifier   notify.Notifier
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type          BackendType
	DataDirectory string
	SQLiteDBPath  string
	SnapshotKey   string

	Notifier     NotifierType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
