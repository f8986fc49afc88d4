// Package worker handles fintrack events delivered by the queue.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Mirror receives copies of recorded transactions and alerts.
type Mirror interface {
	AppendTransaction(ctx context.Context, ref string, tx core.Transaction) (string, error)
	AppendAlert(ctx context.Context, a core.Alert) (string, error)
}

// Stats counts processed events.
type Stats struct {
	Transactions int64
	Alerts       int64
	Duplicates   int64
	Failures     int64
}

// EventWorker mirrors events to a Mirror. Event ids already handled are
// remembered for a while so broker redeliveries do not add duplicate rows.
type EventWorker struct {
	mirror Mirror
	logger *applog.Logger
	seen   *cache.LRUCache[struct{}]

	transactions atomic.Int64
	alerts       atomic.Int64
	duplicates   atomic.Int64
	failures     atomic.Int64
}

// NewEventWorker returns a worker. A nil mirror only logs events.
func NewEventWorker(mirror Mirror, logger *applog.Logger) *EventWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &EventWorker{
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
		seen:   cache.NewLRUCache[struct{}](1024, time.Hour),
	}
}

// Handle processes one event. It matches amqp.Handler.
func (w *EventWorker) Handle(ctx context.Context, e *amqp.Event) error {
	if _, dup := w.seen.Get(e.ID); dup && e.ID != "" {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "Skipping duplicate event", "event_id", e.ID)
		return nil
	}

	var err error
	switch e.Kind {
	case amqp.KindTransactionRecorded:
		err = w.handleTransaction(ctx, e)
	case amqp.KindOverspendingAlert:
		err = w.handleAlert(ctx, e)
	default:
		err = fmt.Errorf("%w: %q", amqp.ErrUnknownKind, e.Kind)
	}
	if err != nil {
		w.failures.Add(1)
		return err
	}
	if e.ID != "" {
		w.seen.Set(e.ID, struct{}{})
	}
	return nil
}

func (w *EventWorker) handleTransaction(ctx context.Context, e *amqp.Event) error {
	tx := *e.Transaction
	w.logger.InfoContext(ctx, "Transaction recorded",
		applog.FieldRef, e.Ref,
		applog.FieldDate, tx.Date.String(),
		applog.FieldType, string(tx.Type),
		applog.FieldCategory, tx.Category,
		applog.FieldAmountCents, tx.Amount.Cents)

	if w.mirror == nil {
		w.transactions.Add(1)
		return nil
	}
	rng, err := w.mirror.AppendTransaction(ctx, e.Ref, tx)
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", e.Ref, err)
	}
	w.transactions.Add(1)
	w.logger.DebugContext(ctx, "Transaction mirrored", "range", rng)
	return nil
}

func (w *EventWorker) handleAlert(ctx context.Context, e *amqp.Event) error {
	a := e.Alert.Alert()
	w.logger.WarnContext(ctx, a.Message(),
		applog.FieldMonth, a.Month,
		applog.FieldCategory, a.Category,
		applog.FieldAmountCents, a.Spent.Cents)

	if w.mirror == nil {
		w.alerts.Add(1)
		return nil
	}
	if _, err := w.mirror.AppendAlert(ctx, a); err != nil {
		return fmt.Errorf("mirror alert %s/%s: %w", a.Month, a.Category, err)
	}
	w.alerts.Add(1)
	return nil
}

// Stats returns a copy of the counters.
func (w *EventWorker) Stats() Stats {
	return Stats{
		Transactions: w.transactions.Load(),
		Alerts:       w.alerts.Load(),
		Duplicates:   w.duplicates.Load(),
		Failures:     w.failures.Load(),
	}
}
