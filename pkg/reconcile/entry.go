// Package reconcile turns a backup snapshot into a deduplicated, date-ordered
// ledger and a per-account balance summary.
//
// The package is a pure transform: it performs no I/O and never fails. Records
// that cannot be resolved are skipped and counted in Stats.
package reconcile

import (
	"github.com/shopspring/decimal"
)

// Kind is the direction of a ledger entry.
type Kind string

const (
	KindExpense  Kind = "Expense"
	KindIncome   Kind = "Income"
	KindTransfer Kind = "Transfer"
)

// Entry is a single normalized monetary event.
//
// Expense and Income entries carry Account and Category; Transfer entries
// carry FromAccount and ToAccount. Inapplicable fields are empty. Value is
// never negative, the sign is implied by Kind.
type Entry struct {
	Kind        Kind
	Date        string
	Value       decimal.Decimal
	Account     string
	Category    string
	FromAccount string
	ToAccount   string

	// Account identifiers used to join entries to balances.
	AccountID     string
	FromAccountID string
	ToAccountID   string
}

// Balance is the final balance of one account, or of a synthetic aggregate.
type Balance struct {
	Title   string
	Balance decimal.Decimal
}

// Result is the output of a reconciliation run.
type Result struct {
	Ledger   []Entry
	Balances []Balance
	Stats    Stats
}

// minorToMajor converts cents to a 2-digit major-unit value.
func minorToMajor(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
