// Package db provides SQLite access: reading the backup database and storing
// reconciliation results.
package db

// Schema defines the SQL statements to create the results tables.
const Schema = `
-- Ledger entries of the latest run, in ledger order
CREATE TABLE IF NOT EXISTS ledger_entries (
    position INTEGER PRIMARY KEY,      -- 0-based index in the ledger
    kind TEXT NOT NULL,                -- 'Expense', 'Income' or 'Transfer'
    entry_date TEXT NOT NULL,          -- YYYY-MM-DD
    value TEXT NOT NULL,               -- major units, 2 decimals
    account TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    from_account TEXT NOT NULL DEFAULT '',
    to_account TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_date
    ON ledger_entries(entry_date);

-- Account balance summary of the latest run, balance-descending
CREATE TABLE IF NOT EXISTS account_balances (
    position INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    balance TEXT NOT NULL              -- major units, 2 decimals
);

-- Run metadata
-- Stores key-value information about the latest run
CREATE TABLE IF NOT EXISTS run_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
