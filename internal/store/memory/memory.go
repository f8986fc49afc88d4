package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

var _ ports.TransactionStore = (*Store)(nil)

// Store keeps transactions in insertion order for the lifetime of the process.
// Writes are serialised; readers get a copy of the collection.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

// NewSeeded returns a store preloaded with the sample transactions.
func NewSeeded() *Store {
	return New(core.SeedTransactions()...)
}

// Append stores the transaction and returns a synthetic reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListTransactions returns a snapshot of the collection.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
