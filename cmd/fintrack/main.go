package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	cli.Fatal(logger, "Server error", run(cfg, logger))
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage backend", applog.FieldError, err)
		}
	}()

	// Queue publishing is optional; without AMQP_URL events are only logged.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP publishing disabled - no AMQP_URL provided")
	}

	snapshots := cache.NewLRUCache[core.Snapshot](8, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(snapshots)

	svc := services.NewTransactionService(store.Store, services.Options{
		Rule:      cfg.OverspendRule(),
		Publisher: publisher,
		Cache:     snapshots,
		Logger:    logger,
	})

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Service:        svc,
		Ready:          store.Ready,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		SnapshotCache:  snapshots,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"overspend_threshold", cfg.OverspendThreshold.Display(),
			"overspend_include_income", cfg.OverspendIncludeIncome)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		cacheManager.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		srv.RunMaintenance(gctx)
		return nil
	})
	return g.Wait()
}
