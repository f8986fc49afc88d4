package backend

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/store/memory"
)

// Factory creates stores based on configuration.
type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create opens the configured store.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLite(ctx, cfg)
	default:
		return f.createMemory(cfg), nil
	}
}

func (f *Factory) createMemory(cfg Config) *Result {
	store := memory.New()
	if cfg.Seed {
		store = memory.NewSeeded()
	}
	f.logger.Info("Initialized memory backend", applog.FieldCount, store.Len(), "seeded", cfg.Seed)
	return &Result{
		Store:  store,
		Ready:  func(context.Context) error { return nil },
		Seeded: cfg.Seed,
	}
}

func (f *Factory) createSQLite(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	seeded := false
	if cfg.Seed {
		seeded, err = repo.SeedIfEmpty(ctx, core.SeedTransactions())
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed sqlite store: %w", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		applog.FieldCount, count,
		"seeded", seeded)

	return &Result{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
		Seeded:  seeded,
	}, nil
}
