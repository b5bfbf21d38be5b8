package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetku/internal/cli"
	apphttp "budgetku/internal/http"
	"budgetku/internal/services"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API, reminder loop and cache cleanup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cli.SignalContext(cmd.Context(), logger)
			defer cancel()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Store, logger, apphttp.Options{
		RateLimitRPM:   cfg.RateLimitRPM,
		AllowedOrigins: cfg.AllowedOrigins,
		Ready:          app.Ready,
		Stats:          app.Stats,
	})
	reminders := services.NewReminderProcessor(app.Store, app.Dispatcher, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetku server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return reminders.Run(gctx, cfg.ReminderInterval)
	})
	g.Go(func() error {
		return app.Caches.Run(gctx, cfg.CacheTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Error("Shutdown incomplete", "error", err)
		runErr = errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("Server stopped gracefully")
	}
	return runErr
}
