package backend

import (
	"context"
	"errors"
	"fmt"

	"budgetku/internal/amqp"
	"budgetku/internal/log"
	"budgetku/internal/notify"
	"budgetku/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend builds the snapshot repository and the notifier. An
// unreachable broker is not fatal: notifications fall back to the log.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}

	notifier, closeNotifier := f.createNotifier(ctx, config)

	return &BackendResult{
		Repository: repo,
		Notifier:   notifier,
		Cleanup: func() error {
			return errors.Join(closeNotifier(), repo.Close())
		},
	}, nil
}

func (f *DefaultFactory) createRepository(config Config) (storage.Repository, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.SnapshotKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "schema_version", repo.SchemaVersion())
		return repo, nil
	case FileBackend:
		repo, err := storage.NewFileRepository(config.DataDirectory, config.SnapshotKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file repository: %w", err)
		}
		f.logger.Info("Initialized file backend", "path", repo.Path())
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return storage.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createNotifier(ctx context.Context, config Config) (notify.Notifier, func() error) {
	logNotifier := notify.NewLogNotifier(f.logger)
	noop := func() error { return nil }

	if config.Notifier != AMQPNotifier {
		return logNotifier, noop
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, logging notifications instead", log.FieldError, err)
		return logNotifier, noop
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return notify.NewAMQPNotifier(client), client.Close
}
