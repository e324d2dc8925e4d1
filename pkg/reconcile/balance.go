package reconcile

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
)

// Balances replays the ledger over the retained accounts' initial balances,
// applies rules' corrections and aggregations, and returns the summary
// sorted by descending balance.
//
// Entries referencing an account outside the retained set still belong to
// the ledger but do not affect any balance.
func Balances(accounts []mmbackup.Account, ledger []Entry, rules Rules) []Balance {
	type running struct {
		title   string
		balance decimal.Decimal
	}

	var order []string
	byID := make(map[string]*running)
	for _, a := range accounts {
		if !a.Retained() {
			continue
		}
		if _, dup := byID[a.UID]; dup {
			continue
		}
		byID[a.UID] = &running{
			title:   a.Title,
			balance: minorToMajor(int64(a.InitialBalance)),
		}
		order = append(order, a.UID)
	}

	add := func(id string, v decimal.Decimal) {
		if acc, ok := byID[id]; ok {
			acc.balance = acc.balance.Add(v).Round(2)
		}
	}

	for _, e := range ledger {
		switch e.Kind {
		case KindIncome:
			add(e.AccountID, e.Value)
		case KindExpense:
			add(e.AccountID, e.Value.Neg())
		case KindTransfer:
			add(e.FromAccountID, e.Value.Neg())
			add(e.ToAccountID, e.Value)
		}
	}

	for _, id := range order {
		acc := byID[id]
		for _, c := range rules.Corrections {
			if c.Matches(acc.title) {
				acc.balance = acc.balance.Add(c.Delta).Round(2)
			}
		}
	}

	balances := make([]Balance, 0, len(order))
	for _, id := range order {
		balances = append(balances, Balance{Title: byID[id].title, Balance: byID[id].balance})
	}

	balances = aggregate(balances, accounts, rules.Aggregations)

	slices.SortStableFunc(balances, func(a, b Balance) int {
		return b.Balance.Cmp(a.Balance)
	})
	return balances
}

// aggregate folds balances matching each rule into one synthetic entry. A
// rule only produces an entry when some account in the full collection,
// retained or not, matches it. Each balance is folded into the first rule it
// matches.
func aggregate(balances []Balance, accounts []mmbackup.Account, rules []AggregationRule) []Balance {
	var active []AggregationRule
	for _, rule := range rules {
		if slices.ContainsFunc(accounts, func(a mmbackup.Account) bool {
			return strings.Contains(a.Title, rule.Contains)
		}) {
			active = append(active, rule)
		}
	}
	if len(active) == 0 {
		return balances
	}

	sums := make([]decimal.Decimal, len(active))
	var passThrough []Balance
	for _, b := range balances {
		idx := slices.IndexFunc(active, func(rule AggregationRule) bool {
			return strings.Contains(b.Title, rule.Contains)
		})
		if idx < 0 {
			passThrough = append(passThrough, b)
			continue
		}
		sums[idx] = sums[idx].Add(b.Balance).Round(2)
	}

	for i, rule := range active {
		passThrough = append(passThrough, Balance{Title: rule.Title, Balance: sums[i]})
	}
	return passThrough
}
