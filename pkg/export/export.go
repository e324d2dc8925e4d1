// Package export writes and reads the published ledger and balance summary
// as JSON files.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/reconcile"
)

// ledgerRecord is the published shape of a ledger entry. Inapplicable fields
// are empty strings, never omitted.
type ledgerRecord struct {
	Type        string      `json:"type"`
	Date        string      `json:"date"`
	Value       json.Number `json:"value"`
	Account     string      `json:"account"`
	Category    string      `json:"category"`
	FromAccount string      `json:"fromAccount"`
	ToAccount   string      `json:"toAccount"`
}

type balanceRecord struct {
	Title   string      `json:"title"`
	Balance json.Number `json:"balance"`
}

// WriteLedger writes the ledger to path, creating parent directories.
func WriteLedger(path string, ledger []reconcile.Entry) error {
	records := make([]ledgerRecord, 0, len(ledger))
	for _, e := range ledger {
		records = append(records, ledgerRecord{
			Type:        string(e.Kind),
			Date:        e.Date,
			Value:       json.Number(e.Value.StringFixed(2)),
			Account:     e.Account,
			Category:    e.Category,
			FromAccount: e.FromAccount,
			ToAccount:   e.ToAccount,
		})
	}
	return writeJSON(path, records)
}

// WriteBalances writes the balance summary to path.
func WriteBalances(path string, balances []reconcile.Balance) error {
	records := make([]balanceRecord, 0, len(balances))
	for _, b := range balances {
		records = append(records, balanceRecord{
			Title:   b.Title,
			Balance: json.Number(b.Balance.StringFixed(2)),
		})
	}
	return writeJSON(path, records)
}

// ReadLedger reads a ledger previously written by WriteLedger. Account
// identifiers are not published, so the returned entries carry titles only.
func ReadLedger(path string) ([]reconcile.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var records []ledgerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}

	ledger := make([]reconcile.Entry, 0, len(records))
	for i, r := range records {
		value, err := decimal.NewFromString(r.Value.String())
		if err != nil {
			return nil, fmt.Errorf("invalid value in ledger entry %d: %w", i, err)
		}
		ledger = append(ledger, reconcile.Entry{
			Kind:        reconcile.Kind(r.Type),
			Date:        r.Date,
			Value:       value,
			Account:     r.Account,
			Category:    r.Category,
			FromAccount: r.FromAccount,
			ToAccount:   r.ToAccount,
		})
	}
	return ledger, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
