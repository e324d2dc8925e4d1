package reconcile

import (
	"strings"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
)

// SkipReason names why a raw record produced no ledger entry.
type SkipReason string

const (
	SkipRemoved           SkipReason = "removed"
	SkipTransferDuplicate SkipReason = "transfer_duplicate"
	SkipMissingReference  SkipReason = "missing_reference"
	SkipIgnoredAccount    SkipReason = "ignored_account"
	SkipUnknownKind       SkipReason = "unknown_kind"
)

// Stats counts emitted and skipped records of one run.
type Stats struct {
	Transactions int
	Transfers    int
	Skipped      map[SkipReason]int
}

// TotalSkipped returns the number of skipped records.
func (s Stats) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// TransferMarker reports whether a category marks its transaction as the
// shadow record of a transfer. Such transactions are dropped because the
// transfer itself is the authoritative record of the movement.
type TransferMarker func(mmbackup.Category) bool

// CategoryTitleContains matches categories whose title contains marker,
// ignoring case. An empty marker matches nothing.
func CategoryTitleContains(marker string) TransferMarker {
	marker = strings.ToLower(marker)
	return func(c mmbackup.Category) bool {
		if marker == "" {
			return false
		}
		return strings.Contains(strings.ToLower(c.Title), marker)
	}
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithTransferMarker replaces the category-title transfer heuristic.
func WithTransferMarker(m TransferMarker) Option {
	return func(n *Normalizer) {
		n.isTransfer = m
	}
}

// Normalizer converts raw transactions and transfers into ledger entries.
type Normalizer struct {
	resolver         *Resolver
	isTransfer       TransferMarker
	fallbackCategory string
	stats            Stats
}

// NewNormalizer creates a Normalizer using r for lookups.
func NewNormalizer(r *Resolver, rules Rules, opts ...Option) *Normalizer {
	fallback := rules.FallbackCategory
	if fallback == "" {
		fallback = DefaultFallbackCategory
	}

	n := &Normalizer{
		resolver:         r,
		isTransfer:       CategoryTitleContains(rules.TransferMarker),
		fallbackCategory: fallback,
		stats:            Stats{Skipped: make(map[SkipReason]int)},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Stats returns the counters accumulated so far.
func (n *Normalizer) Stats() Stats {
	skipped := make(map[SkipReason]int, len(n.stats.Skipped))
	for k, v := range n.stats.Skipped {
		skipped[k] = v
	}
	return Stats{
		Transactions: n.stats.Transactions,
		Transfers:    n.stats.Transfers,
		Skipped:      skipped,
	}
}

// Transaction normalizes one raw transaction. ok is false when the
// transaction must not appear in the ledger.
func (n *Normalizer) Transaction(t mmbackup.Transaction) (Entry, bool) {
	if t.IsRemoved {
		return n.skip(SkipRemoved)
	}

	category, hasCategory := n.resolver.CategoryFor(t.UID)
	if hasCategory && n.isTransfer(category) {
		return n.skip(SkipTransferDuplicate)
	}

	account, ok := n.resolver.AccountFor(t.UID)
	if !ok {
		return n.skip(SkipMissingReference)
	}
	if account.IgnoreInBalance {
		return n.skip(SkipIgnoredAccount)
	}

	var kind Kind
	switch t.Type {
	case mmbackup.TransactionExpense:
		kind = KindExpense
	case mmbackup.TransactionIncome:
		kind = KindIncome
	default:
		return n.skip(SkipUnknownKind)
	}

	categoryTitle := n.fallbackCategory
	if hasCategory && category.Title != "" {
		categoryTitle = category.Title
	}

	n.stats.Transactions++
	return Entry{
		Kind:      kind,
		Date:      t.Date,
		Value:     minorToMajor(int64(t.Amount)).Abs(),
		Account:   account.Title,
		Category:  categoryTitle,
		AccountID: account.UID,
	}, true
}

// Transfer normalizes one raw transfer. Transfers with an unresolved
// endpoint are dropped whole.
func (n *Normalizer) Transfer(t mmbackup.Transfer) (Entry, bool) {
	if t.IsRemoved {
		return n.skip(SkipRemoved)
	}

	from, to, ok := n.resolver.TransferEndpoints(t.UID)
	if !ok {
		return n.skip(SkipMissingReference)
	}

	n.stats.Transfers++
	return Entry{
		Kind:          KindTransfer,
		Date:          t.Date,
		Value:         minorToMajor(int64(t.Amount)).Abs(),
		FromAccount:   from.Title,
		ToAccount:     to.Title,
		FromAccountID: from.UID,
		ToAccountID:   to.UID,
	}, true
}

func (n *Normalizer) skip(reason SkipReason) (Entry, bool) {
	n.stats.Skipped[reason]++
	return Entry{}, false
}
