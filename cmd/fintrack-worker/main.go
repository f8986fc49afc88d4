package main

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"

	"golang.org/x/sync/errgroup"
)

const statsInterval = 5 * time.Minute

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	if !cfg.AMQPEnabled() {
		cli.Fatal(logger, "Configuration validation failed", errors.New("AMQP_URL is required for the worker"))
	}

	if err := run(cfg, logger); !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// The spreadsheet mirror is optional; without it events are only logged.
	var mirror worker.Mirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Settings{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			AlertsSheetName: cfg.GoogleAlertsSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return err
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewEventWorker(mirror, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.Handle)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := w.Stats()
				logger.Info("Worker stats",
					"transactions", st.Transactions,
					"alerts", st.Alerts,
					"duplicates", st.Duplicates,
					"failures", st.Failures)
			}
		}
	})
	return g.Wait()
}
