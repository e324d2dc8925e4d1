// Package beancount renders the reconciled ledger as Beancount plain-text
// accounting files.
package beancount

import "github.com/shopspring/decimal"

// Account roots used for generated account names.
const (
	RootAssets   = "Assets"
	RootExpenses = "Expenses"
	RootIncome   = "Income"
)

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string    // YYYY-MM-DD
	Narration string    // Transaction description
	Tags      []string  // Tags (e.g., ["giroconto"])
	Postings  []Posting // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string          // Account name (e.g., "Assets:Conto")
	Amount   decimal.Decimal // Amount (positive for debit, negative for credit)
	Currency string          // Currency code (e.g., "EUR")
}
