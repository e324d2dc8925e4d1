package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// snapshotBuilder assembles raw collections for tests.
type snapshotBuilder struct {
	s mmbackup.Snapshot
}

func newSnapshot() *snapshotBuilder {
	return &snapshotBuilder{}
}

func (b *snapshotBuilder) account(uid, title string, initial int64) *snapshotBuilder {
	b.s.Accounts = append(b.s.Accounts, mmbackup.Account{UID: uid, Title: title, InitialBalance: mmbackup.Amount(initial)})
	return b
}

func (b *snapshotBuilder) category(uid, title string) *snapshotBuilder {
	b.s.Categories = append(b.s.Categories, mmbackup.Category{UID: uid, Title: title})
	return b
}

func (b *snapshotBuilder) link(entity, other string, role mmbackup.LinkRole) *snapshotBuilder {
	b.s.Links = append(b.s.Links, mmbackup.SyncLink{EntityUID: entity, OtherUID: other, OtherType: role})
	return b
}

// tx adds a transaction linked to account and, when non-empty, category.
func (b *snapshotBuilder) tx(uid string, typ mmbackup.TransactionType, date string, amount int64, account, category string) *snapshotBuilder {
	b.s.Transactions = append(b.s.Transactions, mmbackup.Transaction{UID: uid, Type: typ, Date: date, Amount: mmbackup.Amount(amount)})
	if account != "" {
		b.link(uid, account, mmbackup.RoleAccount)
	}
	if category != "" {
		b.link(uid, category, mmbackup.RoleCategory)
	}
	return b
}

// transfer adds a transfer linked to its endpoints; empty endpoints stay unlinked.
func (b *snapshotBuilder) transfer(uid, date string, amount int64, from, to string) *snapshotBuilder {
	b.s.Transfers = append(b.s.Transfers, mmbackup.Transfer{UID: uid, Date: date, Amount: mmbackup.Amount(amount)})
	if from != "" {
		b.link(uid, from, mmbackup.RoleFromAccount)
	}
	if to != "" {
		b.link(uid, to, mmbackup.RoleToAccount)
	}
	return b
}

func (b *snapshotBuilder) build() *mmbackup.Snapshot {
	s := b.s
	return &s
}

func balanceMap(balances []Balance) map[string]string {
	m := make(map[string]string, len(balances))
	for _, b := range balances {
		m[b.Title] = b.Balance.StringFixed(2)
	}
	return m
}

func TestReconcile_IncomeScenario(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 0).
		category("c1", "Stipendio").
		tx("t1", mmbackup.TransactionIncome, "2024-01-31", 10000, "a1", "c1").
		build()

	res := Reconcile(s, DefaultRules())

	want := []Entry{{
		Kind:      KindIncome,
		Date:      "2024-01-31",
		Value:     decimal.RequireFromString("100.00"),
		Account:   "Conto",
		Category:  "Stipendio",
		AccountID: "a1",
	}}
	if diff := cmp.Diff(want, res.Ledger, decimalEqual); diff != "" {
		t.Errorf("Reconcile() ledger mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "100.00", res.Ledger[0].Value.StringFixed(2))
	assert.Equal(t, 1, res.Stats.Transactions)
}

func TestReconcile_TransferScenario(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 0).
		account("a2", "Risparmi", 0).
		transfer("x1", "2024-02-01", 5000, "a1", "a2").
		build()

	res := Reconcile(s, DefaultRules())

	require.Len(t, res.Ledger, 1)
	e := res.Ledger[0]
	assert.Equal(t, KindTransfer, e.Kind)
	assert.Equal(t, "50.00", e.Value.StringFixed(2))
	assert.Equal(t, "Conto", e.FromAccount)
	assert.Equal(t, "Risparmi", e.ToAccount)
	assert.Empty(t, e.Account)
	assert.Empty(t, e.Category)

	assert.Equal(t, map[string]string{"Conto": "-50.00", "Risparmi": "50.00"}, balanceMap(res.Balances))
}

func TestReconcile_TransferDuplicateIsDropped(t *testing.T) {
	titles := []string{"Giroconto", "giroconto", "GIROCONTO interno", "Trasferimento (giroConto)"}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			s := newSnapshot().
				account("a1", "Conto", 0).
				account("a2", "Risparmi", 0).
				category("c1", title).
				tx("t1", mmbackup.TransactionExpense, "2024-01-10", 5000, "a1", "c1").
				transfer("x1", "2024-01-10", 5000, "a1", "a2").
				build()

			res := Reconcile(s, DefaultRules())

			require.Len(t, res.Ledger, 1)
			assert.Equal(t, KindTransfer, res.Ledger[0].Kind)
			assert.Equal(t, 1, res.Stats.Skipped[SkipTransferDuplicate])
		})
	}
}

func TestReconcile_FallbackCategory(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 0).
		tx("t1", mmbackup.TransactionExpense, "2024-01-10", 1234, "a1", "").
		tx("t2", mmbackup.TransactionIncome, "2024-01-11", 100, "a1", "missing-category").
		build()

	res := Reconcile(s, DefaultRules())

	require.Len(t, res.Ledger, 2)
	for _, e := range res.Ledger {
		assert.Equal(t, "Regolazione saldo", e.Category)
	}
	assert.Equal(t, "12.34", res.Ledger[0].Value.StringFixed(2))
}

func TestReconcile_SkipsUnusableTransactions(t *testing.T) {
	b := newSnapshot().
		account("a1", "Conto", 0).
		account("ign", "Carta", 0).
		account("gone", "Chiuso", 0).
		category("c1", "Spesa").
		tx("removed", mmbackup.TransactionExpense, "2024-01-01", 100, "a1", "c1").
		tx("no-account", mmbackup.TransactionExpense, "2024-01-01", 100, "", "c1").
		tx("dangling", mmbackup.TransactionExpense, "2024-01-01", 100, "nope", "c1").
		tx("ignored", mmbackup.TransactionExpense, "2024-01-01", 100, "ign", "c1").
		tx("removed-account", mmbackup.TransactionExpense, "2024-01-01", 100, "gone", "c1").
		tx("weird", "Refund", "2024-01-01", 100, "a1", "c1").
		tx("ok", mmbackup.TransactionExpense, "2024-01-01", 100, "a1", "c1")
	b.s.Transactions[0].IsRemoved = true
	b.s.Accounts[1].IgnoreInBalance = true
	b.s.Accounts[2].IsRemoved = true

	res := Reconcile(b.build(), DefaultRules())

	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "Conto", res.Ledger[0].Account)

	assert.Equal(t, 1, res.Stats.Skipped[SkipRemoved])
	assert.Equal(t, 3, res.Stats.Skipped[SkipMissingReference])
	assert.Equal(t, 1, res.Stats.Skipped[SkipIgnoredAccount])
	assert.Equal(t, 1, res.Stats.Skipped[SkipUnknownKind])
	assert.Equal(t, 6, res.Stats.TotalSkipped())
}

func TestReconcile_TransferCompleteness(t *testing.T) {
	b := newSnapshot().
		account("a1", "Conto", 0).
		account("a2", "Risparmi", 0).
		transfer("no-from", "2024-01-01", 100, "", "a2").
		transfer("no-to", "2024-01-01", 100, "a1", "").
		transfer("dangling", "2024-01-01", 100, "a1", "nope").
		transfer("removed", "2024-01-01", 100, "a1", "a2")
	b.s.Transfers[3].IsRemoved = true

	res := Reconcile(b.build(), DefaultRules())

	assert.Empty(t, res.Ledger)
	assert.Equal(t, 3, res.Stats.Skipped[SkipMissingReference])
	assert.Equal(t, 1, res.Stats.Skipped[SkipRemoved])
	assert.Equal(t, map[string]string{"Conto": "0.00", "Risparmi": "0.00"}, balanceMap(res.Balances))
}

func TestReconcile_Ordering(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 0).
		account("a2", "Risparmi", 0).
		category("c1", "Spesa").
		transfer("x1", "2024-01-02", 100, "a1", "a2").
		tx("t1", mmbackup.TransactionExpense, "2024-01-03", 100, "a1", "c1").
		tx("t2", mmbackup.TransactionExpense, "2024-01-02", 200, "a1", "c1").
		transfer("x2", "2024-01-01", 300, "a2", "a1").
		tx("t3", mmbackup.TransactionIncome, "2024-01-02", 400, "a1", "c1").
		build()

	res := Reconcile(s, DefaultRules())

	var got []string
	for _, e := range res.Ledger {
		got = append(got, e.Date+" "+string(e.Kind)+" "+e.Value.StringFixed(2))
	}
	want := []string{
		"2024-01-01 Transfer 3.00",
		"2024-01-02 Expense 2.00",
		"2024-01-02 Income 4.00",
		"2024-01-02 Transfer 1.00",
		"2024-01-03 Expense 1.00",
	}
	assert.Equal(t, want, got)
}

func TestReconcile_Idempotent(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 150000).
		account("a2", "ETF World", 20000).
		category("c1", "Spesa").
		tx("t1", mmbackup.TransactionExpense, "2024-01-03", 1999, "a1", "c1").
		transfer("x1", "2024-01-02", 10000, "a1", "a2").
		build()

	first := Reconcile(s, DefaultRules())
	second := Reconcile(s, DefaultRules())

	if diff := cmp.Diff(first, second, decimalEqual); diff != "" {
		t.Errorf("Reconcile() not idempotent (-first +second):\n%s", diff)
	}
}

func TestReconcile_Conservation(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 123456).
		account("a2", "Risparmi", 50000).
		account("a3", "Carta", -2500).
		category("c1", "Spesa").
		category("c2", "Stipendio").
		tx("t1", mmbackup.TransactionIncome, "2024-01-01", 250000, "a1", "c2").
		tx("t2", mmbackup.TransactionExpense, "2024-01-02", 3333, "a1", "c1").
		tx("t3", mmbackup.TransactionExpense, "2024-01-03", 1001, "a3", "c1").
		tx("t4", mmbackup.TransactionExpense, "2024-01-04", 999, "a2", "").
		transfer("x1", "2024-01-05", 70000, "a1", "a2").
		transfer("x2", "2024-01-06", 2500, "a2", "a3").
		build()

	res := Reconcile(s, DefaultRules().WithoutCorrections())

	total := decimal.Zero
	for _, b := range res.Balances {
		total = total.Add(b.Balance)
	}

	// initial 1709.56 + income 2500.00 - expenses 53.33
	assert.Equal(t, "4156.23", total.StringFixed(2))
}

func TestBalances_ETFAggregation(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "ETF-A", InitialBalance: 10000},
		{UID: "2", Title: "ETF-B", InitialBalance: 5000},
		{UID: "3", Title: "Cash", InitialBalance: 2000},
	}

	got := Balances(accounts, nil, DefaultRules())

	require.Len(t, got, 2)
	assert.Equal(t, "ETF", got[0].Title)
	assert.Equal(t, "150.00", got[0].Balance.StringFixed(2))
	assert.Equal(t, "Cash", got[1].Title)
	assert.Equal(t, "20.00", got[1].Balance.StringFixed(2))
}

func TestBalances_ETFAggregationFromNonRetainedAccount(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "ETF old", InitialBalance: 10000, IsRemoved: true},
		{UID: "2", Title: "Cash", InitialBalance: 2000},
	}

	got := Balances(accounts, nil, DefaultRules())

	assert.Equal(t, map[string]string{"Cash": "20.00", "ETF": "0.00"}, balanceMap(got))
}

func TestBalances_NoETFAccounts(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "Cash", InitialBalance: 2000},
	}

	got := Balances(accounts, nil, DefaultRules())

	assert.Equal(t, map[string]string{"Cash": "20.00"}, balanceMap(got))
}

func TestBalances_ManualCorrection(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "Intesa San Paolo", InitialBalance: 100000},
		{UID: "2", Title: "Contanti", InitialBalance: 50000},
	}

	got := Balances(accounts, nil, DefaultRules())

	require.Len(t, got, 2)
	assert.Equal(t, "Intesa San Paolo", got[0].Title)
	assert.Equal(t, "1219.50", got[0].Balance.StringFixed(2))
	assert.Equal(t, "Contanti", got[1].Title)
	assert.Equal(t, "280.50", got[1].Balance.StringFixed(2))

	plain := Balances(accounts, nil, DefaultRules().WithoutCorrections())
	assert.Equal(t, map[string]string{"Intesa San Paolo": "1000.00", "Contanti": "500.00"}, balanceMap(plain))
}

func TestBalances_ExcludesNonRetainedAccounts(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "Conto", InitialBalance: 1000},
		{UID: "2", Title: "Carta", InitialBalance: 1000, IgnoreInBalance: true},
		{UID: "3", Title: "Chiuso", InitialBalance: 1000, IsRemoved: true},
	}
	ledger := []Entry{
		{Kind: KindTransfer, Value: decimal.NewFromInt(5), FromAccountID: "1", ToAccountID: "2"},
		{Kind: KindExpense, Value: decimal.NewFromInt(1), AccountID: "3"},
	}

	got := Balances(accounts, ledger, DefaultRules())

	assert.Equal(t, map[string]string{"Conto": "5.00"}, balanceMap(got))
}

func TestBalances_SortedDescending(t *testing.T) {
	accounts := []mmbackup.Account{
		{UID: "1", Title: "Low", InitialBalance: -500},
		{UID: "2", Title: "High", InitialBalance: 90000},
		{UID: "3", Title: "Mid", InitialBalance: 1000},
	}

	got := Balances(accounts, nil, DefaultRules())

	var titles []string
	for _, b := range got {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"High", "Mid", "Low"}, titles)
}

func TestWithTransferMarker(t *testing.T) {
	s := newSnapshot().
		account("a1", "Conto", 0).
		category("c1", "Giroconto").
		category("c2", "Internal move").
		tx("t1", mmbackup.TransactionExpense, "2024-01-01", 100, "a1", "c1").
		tx("t2", mmbackup.TransactionExpense, "2024-01-01", 100, "a1", "c2").
		build()

	res := Reconcile(s, DefaultRules(), WithTransferMarker(func(c mmbackup.Category) bool {
		return c.UID == "c2"
	}))

	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "Giroconto", res.Ledger[0].Category)
}

func TestResolver_FirstLinkWins(t *testing.T) {
	s := newSnapshot().
		account("a1", "Primo", 0).
		account("a2", "Secondo", 0).
		link("t1", "a1", mmbackup.RoleAccount).
		link("t1", "a2", mmbackup.RoleAccount).
		link("t1", "a2", "Unknown").
		build()

	r := NewResolver(s)

	a, ok := r.AccountFor("t1")
	require.True(t, ok)
	assert.Equal(t, "Primo", a.Title)

	_, ok = r.CategoryFor("t1")
	assert.False(t, ok)

	_, _, ok = r.TransferEndpoints("t1")
	assert.False(t, ok)
}
