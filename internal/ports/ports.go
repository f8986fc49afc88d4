package ports

import (
	"context"

	"fintrack/internal/core"
)

// Ports for transaction storage.
type (
	TransactionWriter interface {
		// Append stores the transaction at the end of the collection and
		// returns a backend-specific reference.
		Append(ctx context.Context, tx core.Transaction) (ref string, err error)
	}

	// TransactionLister returns the whole collection in insertion order.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionStore interface {
		TransactionWriter
		TransactionLister
	}
)
