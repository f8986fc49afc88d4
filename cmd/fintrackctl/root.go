package main

import (
	"context"
	"io"
	"strings"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	backend string
	dbPath  string
	noSeed  bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Inspect, export and import fintrack transactions",
		Long: `fintrackctl works directly against a fintrack storage backend.

Settings come from the environment (and .env) like the server; the flags
below override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile()
		},
	}

	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: memory or sqlite (default from DATA_BACKEND)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default from SQLITE_DB_PATH)")
	root.PersistentFlags().BoolVar(&opts.noSeed, "no-seed", false, "do not load the sample transactions into an empty store")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(
		newSummaryCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// session is an opened backend plus the service on top of it.
type session struct {
	cfg   *config.Config
	store *backend.Result
	svc   *services.TransactionService
}

func (s *session) Close() error {
	return s.store.Close()
}

// open applies the flag overrides, validates and opens the backend.
func (o *options) open(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg := config.Load()
	if o.backend != "" {
		cfg.DataBackend = strings.ToLower(o.backend)
	}
	if o.dbPath != "" {
		cfg.SQLiteDBPath = o.dbPath
	}
	if o.noSeed {
		cfg.SeedSampleData = false
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentCLI,
		Output:    stderr,
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return nil, err
	}
	svc := services.NewTransactionService(store.Store, services.Options{
		Rule:   cfg.OverspendRule(),
		Logger: logger,
	})
	return &session{cfg: cfg, store: store, svc: svc}, nil
}
