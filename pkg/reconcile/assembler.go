package reconcile

import (
	"slices"
	"strings"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
)

// Assemble merges transaction entries followed by transfer entries and
// sorts them by date. The sort is stable: entries sharing a date keep their
// production order.
func Assemble(transactions, transfers []Entry) []Entry {
	ledger := make([]Entry, 0, len(transactions)+len(transfers))
	ledger = append(ledger, transactions...)
	ledger = append(ledger, transfers...)

	slices.SortStableFunc(ledger, func(a, b Entry) int {
		return strings.Compare(a.Date, b.Date)
	})
	return ledger
}

// Reconcile runs the whole pipeline over a snapshot: reference resolution,
// normalization, assembly and balance calculation.
func Reconcile(s *mmbackup.Snapshot, rules Rules, opts ...Option) Result {
	normalizer := NewNormalizer(NewResolver(s), rules, opts...)

	var transactions []Entry
	for _, t := range s.Transactions {
		if e, ok := normalizer.Transaction(t); ok {
			transactions = append(transactions, e)
		}
	}

	var transfers []Entry
	for _, t := range s.Transfers {
		if e, ok := normalizer.Transfer(t); ok {
			transfers = append(transfers, e)
		}
	}

	ledger := Assemble(transactions, transfers)

	return Result{
		Ledger:   ledger,
		Balances: Balances(s.Accounts, ledger, rules),
		Stats:    normalizer.Stats(),
	}
}
