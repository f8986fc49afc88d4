package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.TransactionStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection keeps appends ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ports.TransactionWriter
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, type, category, amount_cents, note) VALUES (?, ?, ?, ?, ?)`,
		tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Cents, tx.Note)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read transaction id: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"component", "storage",
		"id", id,
		"type", tx.Type,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// ListTransactions implements ports.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, type, category, amount_cents, note FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			date, typ, category, note string
			cents                     int64
		)
		if err := rows.Scan(&date, &typ, &category, &cents, &note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		out = append(out, core.Transaction{
			Date:     d,
			Type:     core.TransactionType(typ),
			Category: category,
			Amount:   core.Money{Cents: cents},
			Note:     note,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// SeedIfEmpty inserts txs in one database transaction when the table is empty.
// It reports whether anything was inserted.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, txs []core.Transaction) (bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx,
		`INSERT INTO transactions (date, type, category, amount_cents, note) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return false, fmt.Errorf("seed transaction %s/%s: %w", tx.Date, tx.Category, err)
		}
		if _, err := stmt.ExecContext(ctx, tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Cents, tx.Note); err != nil {
			return false, fmt.Errorf("insert seed transaction: %w", err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Seeded sample transactions", "component", "storage", "count", len(txs))
	return true, nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
