package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetku/internal/amqp"
	"budgetku/internal/cache"
	"budgetku/internal/cli"
	"budgetku/internal/log"
	"budgetku/internal/notify"
	"budgetku/internal/worker"
)

func main() {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(err)
	}
	logger, err := cli.SetupLogger(cfg, nil)
	if err != nil {
		cli.Fatal(err)
	}
	logger = logger.WithComponent(log.ComponentWorker)

	if cfg.AMQPURL == "" {
		cli.Fatal(errors.New("AMQP_URL is required for budgetku-notifier"))
	}

	logger.Info("Starting budgetku-notifier",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		cli.Fatal(err)
	}
	defer client.Close()

	w := worker.NewNotificationWorker(notify.NewLogNotifier(logger), logger)
	caches := cache.NewManager(logger)
	caches.Register(w.Seen())

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeNotifications(gctx, w.HandleNotificationMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return caches.Run(gctx, 10*time.Minute)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		cli.Fatal(err)
	}

	delivered, duplicates := w.Stats()
	logger.Info("Notifier stopped",
		"delivered", delivered,
		"duplicates", duplicates)
}
