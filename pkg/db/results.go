package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/reconcile"
)

// Metadata keys written by Replace.
const (
	MetaGeneratedAt = "generated_at"
	MetaSource      = "source"
)

// Results stores the ledger and balance summary of the latest run.
type Results struct {
	conn *Connection
}

// NewResults creates a new Results instance.
func NewResults(conn *Connection) *Results {
	return &Results{conn: conn}
}

// Replace atomically swaps the stored results for the given ones.
func (r *Results) Replace(ctx context.Context, ledger []reconcile.Entry, balances []reconcile.Balance, source string, generatedAt time.Time) error {
	return r.conn.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries`); err != nil {
			return fmt.Errorf("failed to clear ledger entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM account_balances`); err != nil {
			return fmt.Errorf("failed to clear account balances: %w", err)
		}

		entryStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO ledger_entries (position, kind, entry_date, value, account, category, from_account, to_account)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare ledger insert: %w", err)
		}
		defer entryStmt.Close()

		for i, e := range ledger {
			if _, err := entryStmt.ExecContext(ctx,
				i,
				string(e.Kind),
				e.Date,
				e.Value.StringFixed(2),
				e.Account,
				e.Category,
				e.FromAccount,
				e.ToAccount,
			); err != nil {
				return fmt.Errorf("failed to insert ledger entry %d: %w", i, err)
			}
		}

		balanceStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO account_balances (position, title, balance) VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare balance insert: %w", err)
		}
		defer balanceStmt.Close()

		for i, b := range balances {
			if _, err := balanceStmt.ExecContext(ctx, i, b.Title, b.Balance.StringFixed(2)); err != nil {
				return fmt.Errorf("failed to insert balance %q: %w", b.Title, err)
			}
		}

		metadata := map[string]string{
			MetaGeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			MetaSource:      source,
		}
		for key, value := range metadata {
			if err := setMetadata(ctx, tx, key, value); err != nil {
				return err
			}
		}

		return nil
	})
}

// Stats represents a summary of the stored results.
type Stats struct {
	TotalEntries  int
	TotalBalances int
	GeneratedAt   sql.NullString
	Source        sql.NullString
}

// GetStats retrieves a summary of the stored results.
func (r *Results) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	err := r.conn.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`).Scan(&stats.TotalEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry count: %w", err)
	}

	err = r.conn.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_balances`).Scan(&stats.TotalBalances)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance count: %w", err)
	}

	if stats.GeneratedAt, err = r.getMetadata(ctx, MetaGeneratedAt); err != nil {
		return nil, err
	}
	if stats.Source, err = r.getMetadata(ctx, MetaSource); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *Results) getMetadata(ctx context.Context, key string) (sql.NullString, error) {
	var value sql.NullString
	err := r.conn.db.QueryRowContext(ctx, `SELECT value FROM run_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return sql.NullString{}, nil
	}
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to get metadata: %w", err)
	}
	return value, nil
}

func setMetadata(ctx context.Context, tx *sql.Tx, key, value string) error {
	query := `
		INSERT INTO run_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}
