// Package cli holds the startup steps shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

// exit is replaced in tests.
var exit = os.Exit

// Bootstrap loads .env and the environment, sets up the default logger for
// component and validates the configuration. Any failure is logged and ends
// the process with status 1.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	cfg, logger, err := load(component, os.Stdout)
	if err != nil {
		logger.Error("Startup failed", applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
		exit(1)
	}
	return cfg, logger
}

func load(component string, out io.Writer) (*config.Config, *applog.Logger, error) {
	// .env is optional; a malformed one is reported.
	envErr := config.LoadEnvFile()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    out,
	})
	applog.SetDefault(logger)

	if envErr != nil {
		return nil, logger, envErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
	}()
	return ctx, cancel
}

// Fatal logs err and exits with status 1 unless err is nil.
func Fatal(logger *applog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logger.Error(msg, applog.FieldError, fmt.Sprint(err))
	exit(1)
}
