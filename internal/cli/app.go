package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetku/internal/backend"
	"budgetku/internal/cache"
	"budgetku/internal/config"
	"budgetku/internal/core"
	"budgetku/internal/log"
	"budgetku/internal/notify"
	"budgetku/internal/storage"
	"budgetku/internal/store"
)

// App is a store wired to persistence and notifications.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Store      *store.Store
	Saver      *storage.AutoSaver
	Dispatcher *notify.Dispatcher
	Caches     *cache.Manager

	backend *backend.BackendResult
}

// Bootstrap builds the backend, rehydrates the store and wires the
// autosaver and the notification dispatcher to store events.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	analytics := cache.NewLRUCache[core.Analytics](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(analytics)

	initial := storage.Rehydrate(ctx, res.Repository, time.Now().In(loc), logger)
	opts := []store.Option{
		store.WithLocation(loc),
		store.WithAnalyticsCache(analytics),
		store.WithLogger(logger),
	}
	if cfg.StrictValidation {
		opts = append(opts, store.WithValidator(core.StrictValidator(loc)))
	}
	s := store.New(initial, opts...)

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Store:      s,
		Saver:      storage.NewAutoSaver(res.Repository, logger),
		Dispatcher: notify.NewDispatcher(res.Notifier, logger, notify.WithDispatchClock(s.Now)),
		Caches:     caches,
		backend:    res,
	}

	s.OnChange(func(ev store.ChangeEvent) { app.Saver.Enqueue(ev.Snapshot) })
	s.OnOverspend(app.Dispatcher.HandleOverspend)

	s.InitializeTags()
	if cfg.DefaultCurrency != "" && s.Settings().Currency == "" {
		s.SetCurrency(cfg.DefaultCurrency)
	}
	return app, nil
}

// Ready pings the repository when it supports it.
func (a *App) Ready(ctx context.Context) error {
	if p, ok := a.backend.Repository.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Stats reports the autosave and notification counters.
func (a *App) Stats() map[string]uint64 {
	sent, failed, dropped := a.Dispatcher.Stats()
	return map[string]uint64{
		"autosave_writes_total":       a.Saver.Saves(),
		"autosave_failures_total":     a.Saver.Failures(),
		"notifications_sent_total":    sent,
		"notifications_failed_total":  failed,
		"notifications_dropped_total": dropped,
	}
}

// Close drains pending notifications, writes the last snapshot and releases
// the backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
	}
	if err := a.Saver.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close autosaver: %w", err))
	}
	if a.backend.Cleanup != nil {
		if err := a.backend.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("backend cleanup: %w", err))
		}
	}
	return errors.Join(errs...)
}
