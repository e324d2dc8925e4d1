package beancount

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/reconcile"
)

// Converter converts ledger entries to Beancount transactions.
type Converter struct {
	currency string
}

// NewConverter creates a new Converter.
func NewConverter(currency string) *Converter {
	if currency == "" {
		currency = "EUR"
	}
	return &Converter{currency: currency}
}

// ConvertEntry converts a ledger entry to a balanced Beancount transaction.
func (c *Converter) ConvertEntry(e reconcile.Entry) Transaction {
	// Beancount only accepts calendar dates.
	if len(e.Date) > 10 {
		e.Date = e.Date[:10]
	}

	switch e.Kind {
	case reconcile.KindIncome:
		return Transaction{
			Date:      e.Date,
			Narration: e.Category,
			Postings: []Posting{
				{Account: AccountName(RootAssets, e.Account), Amount: e.Value, Currency: c.currency},
				{Account: AccountName(RootIncome, e.Category), Amount: e.Value.Neg(), Currency: c.currency},
			},
		}
	case reconcile.KindTransfer:
		return Transaction{
			Date:      e.Date,
			Narration: fmt.Sprintf("%s -> %s", e.FromAccount, e.ToAccount),
			Tags:      []string{"giroconto"},
			Postings: []Posting{
				{Account: AccountName(RootAssets, e.ToAccount), Amount: e.Value, Currency: c.currency},
				{Account: AccountName(RootAssets, e.FromAccount), Amount: e.Value.Neg(), Currency: c.currency},
			},
		}
	default:
		return Transaction{
			Date:      e.Date,
			Narration: e.Category,
			Postings: []Posting{
				{Account: AccountName(RootExpenses, e.Category), Amount: e.Value, Currency: c.currency},
				{Account: AccountName(RootAssets, e.Account), Amount: e.Value.Neg(), Currency: c.currency},
			},
		}
	}
}

// FormatTransaction formats a Beancount transaction as a string.
func (c *Converter) FormatTransaction(txn Transaction) string {
	var sb strings.Builder

	// Transaction header
	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	if len(txn.Tags) > 0 {
		sb.WriteString(" #")
		sb.WriteString(strings.Join(txn.Tags, " #"))
	}
	sb.WriteString("\n")

	// Postings
	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		// Right-align amount (typical Beancount style)
		amount := posting.Amount.StringFixed(2)
		spaces := max(1, 60-len(posting.Account)-len(amount))
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(fmt.Sprintf("%s %s\n", amount, posting.Currency))
	}

	return sb.String()
}

// Accounts returns every account name used by txns, sorted.
func Accounts(txns []Transaction) []string {
	seen := make(map[string]bool)
	var names []string
	for _, txn := range txns {
		for _, p := range txn.Postings {
			if !seen[p.Account] {
				seen[p.Account] = true
				names = append(names, p.Account)
			}
		}
	}
	sort.Strings(names)
	return names
}

// AccountName builds a valid Beancount account name from a root and a free
// text title: words are capitalized and joined, other characters dropped.
// Example: ("Assets", "Intesa San Paolo") -> "Assets:IntesaSanPaolo"
func AccountName(root, title string) string {
	var sb strings.Builder
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	name := sb.String()
	if name == "" {
		name = "Unknown"
	} else if first := []rune(name)[0]; !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		name = "X" + name
	}
	return root + ":" + name
}

// FormatMonth formats transactions separated by blank lines.
func (c *Converter) FormatMonth(txns []Transaction) string {
	var sb strings.Builder
	for i, txn := range txns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(c.FormatTransaction(txn))
	}
	return sb.String()
}

// ConvertLedger converts every ledger entry in order.
func (c *Converter) ConvertLedger(ledger []reconcile.Entry) []Transaction {
	txns := make([]Transaction, 0, len(ledger))
	for _, e := range ledger {
		txns = append(txns, c.ConvertEntry(e))
	}
	return txns
}

// Currency returns the commodity used for postings.
func (c *Converter) Currency() string {
	return c.currency
}

// Book converts the ledger and writes one file per month plus the main file
// through repo. It returns the months written.
func (c *Converter) Book(repo Repository, ledger []reconcile.Entry) ([]string, error) {
	txns := c.ConvertLedger(ledger)
	groups, months := GroupByMonth(txns)

	for _, ym := range months {
		if err := repo.WriteMonth(ym, c.FormatMonth(groups[ym])); err != nil {
			return nil, fmt.Errorf("failed to write month %s: %w", ym, err)
		}
	}

	if _, err := repo.WriteMain(c.currency, Accounts(txns), months); err != nil {
		return nil, fmt.Errorf("failed to write main file: %w", err)
	}

	return months, nil
}
