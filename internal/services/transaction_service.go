package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
)

// EventPublisher receives notifications after a successful write.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, ref string, tx core.Transaction) error
	PublishOverspending(ctx context.Context, a core.Alert) error
}

// Options configures a TransactionService. Zero values are usable; a zero
// threshold selects the default rule.
type Options struct {
	Rule      core.OverspendRule
	Publisher EventPublisher
	Cache     cache.Cache[core.Snapshot]
	Logger    *applog.Logger
}

// TransactionService appends transactions and serves the derived views. Every
// write invalidates the cached snapshot; the next read recomputes everything
// from the full collection.
type TransactionService struct {
	store     ports.TransactionStore
	rule      core.OverspendRule
	publisher EventPublisher
	cache     cache.Cache[core.Snapshot]
	logger    *applog.Logger
	sl        *applog.StructuredLogger

	writeMu    sync.Mutex
	generation atomic.Uint64
}

// Recorded is the outcome of a successful write.
type Recorded struct {
	Ref         string
	Transaction core.Transaction
	Snapshot    core.Snapshot
	// Alerts holds every alert of the recomputed snapshot.
	Alerts []core.Alert
}

func NewTransactionService(store ports.TransactionStore, opts Options) *TransactionService {
	if opts.Rule.Threshold.Cents == 0 {
		opts.Rule = core.DefaultOverspendRule()
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentTransaction)
	return &TransactionService{
		store:     store,
		rule:      opts.Rule,
		publisher: opts.Publisher,
		cache:     opts.Cache,
		logger:    logger,
		sl:        applog.NewStructuredLogger(logger),
	}
}

// Rule returns the active overspending rule.
func (s *TransactionService) Rule() core.OverspendRule {
	return s.rule
}

// Record validates and appends tx, then recomputes the derived views.
// Publishing is best effort and never fails the write.
func (s *TransactionService) Record(ctx context.Context, tx core.Transaction) (Recorded, error) {
	if err := tx.Validate(); err != nil {
		return Recorded{}, err
	}

	s.writeMu.Lock()
	ref, err := s.store.Append(ctx, tx)
	if err != nil {
		s.writeMu.Unlock()
		return Recorded{}, fmt.Errorf("save transaction: %w", err)
	}
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Purge()
	}
	snap, err := s.Snapshot(ctx)
	s.writeMu.Unlock()
	if err != nil {
		return Recorded{}, fmt.Errorf("recompute after save: %w", err)
	}

	s.sl.LogTransactionRecorded(ctx, tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Cents, ref)
	for _, a := range snap.Alerts {
		s.logger.WarnContext(ctx, "Overspending threshold exceeded",
			applog.FieldMonth, a.Month,
			applog.FieldCategory, a.Category,
			applog.FieldAmountCents, a.Spent.Cents)
	}

	s.publish(ctx, ref, tx, snap.Alerts)

	return Recorded{Ref: ref, Transaction: tx, Snapshot: snap, Alerts: snap.Alerts}, nil
}

func (s *TransactionService) publish(ctx context.Context, ref string, tx core.Transaction, alerts []core.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, ref, tx); err != nil {
		s.sl.LogError(ctx, "Failed to publish transaction event", err, applog.OpPublish,
			applog.NewFields().WithComponent(applog.ComponentAMQP))
	}
	// only pairs the new transaction contributed to
	month := tx.Date.MonthKey()
	for _, a := range alerts {
		if a.Month != month || a.Category != tx.Category {
			continue
		}
		if err := s.publisher.PublishOverspending(ctx, a); err != nil {
			s.sl.LogError(ctx, "Failed to publish overspending event", err, applog.OpPublish,
				applog.NewFields().WithComponent(applog.ComponentAMQP))
		}
	}
}

// Import records each transaction in order and stops at the first failure.
// It returns how many were stored.
func (s *TransactionService) Import(ctx context.Context, txs []core.Transaction) (int, error) {
	for i, tx := range txs {
		if _, err := s.Record(ctx, tx); err != nil {
			return i, fmt.Errorf("import transaction %d: %w", i, err)
		}
	}
	return len(txs), nil
}

// Transactions returns the collection in insertion order.
func (s *TransactionService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Snapshot returns every derived view, from cache when the collection has not
// changed since it was computed.
func (s *TransactionService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	key := "snapshot:" + strconv.FormatUint(s.generation.Load(), 10)
	if s.cache != nil {
		if snap, ok := s.cache.Get(key); ok {
			return snap, nil
		}
	}

	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap := core.Summarize(txs, s.rule)
	if s.cache != nil {
		s.cache.Set(key, snap)
	}
	return snap, nil
}
