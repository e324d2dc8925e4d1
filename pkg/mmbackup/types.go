// Package mmbackup provides the raw record types of a personal-finance backup
// and a loader for the per-table JSON export of its database.
package mmbackup

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table names exported from myFinance.db that the ledger needs.
const (
	TableAccount     = "account"
	TableTransaction = "transaction"
	TableTransfer    = "transfer"
	TableSyncLink    = "sync_link"
	TableCategory    = "category"
)

// RequiredTables lists every table a snapshot is built from, in load order.
var RequiredTables = []string{
	TableAccount,
	TableTransaction,
	TableTransfer,
	TableSyncLink,
	TableCategory,
}

// TransactionType is the kind of a raw transaction.
type TransactionType string

const (
	TransactionExpense TransactionType = "Expense"
	TransactionIncome  TransactionType = "Income"
)

// LinkRole is the otherType of a sync_link row.
type LinkRole string

const (
	RoleAccount     LinkRole = "Account"
	RoleCategory    LinkRole = "Category"
	RoleFromAccount LinkRole = "FromAccount"
	RoleToAccount   LinkRole = "ToAccount"
)

// Account is a row of the account table.
type Account struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	InitialBalance  Amount `json:"initialBalance"`
	IgnoreInBalance Flag   `json:"ignoreInBalance"`
	IsRemoved       Flag   `json:"isRemoved"`
}

// Retained reports whether the account takes part in balance computation.
func (a Account) Retained() bool {
	return !bool(a.IsRemoved) && !bool(a.IgnoreInBalance)
}

// Category is a row of the category table.
type Category struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

// Transaction is a row of the transaction table.
type Transaction struct {
	UID       string          `json:"uid"`
	Type      TransactionType `json:"type"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Amount    Amount          `json:"amountInDefaultCurrency"`
	IsRemoved Flag            `json:"isRemoved"`
}

// Transfer is a row of the transfer table. Amount is the "from" side.
type Transfer struct {
	UID       string `json:"uid"`
	Date      string `json:"date"` // YYYY-MM-DD
	Amount    Amount `json:"fromAmount"`
	IsRemoved Flag   `json:"isRemoved"`
}

// SyncLink associates an entity (transaction or transfer) with another
// entity (account or category) under a role.
type SyncLink struct {
	EntityUID string   `json:"entityUid"`
	OtherUID  string   `json:"otherUid"`
	OtherType LinkRole `json:"otherType"`
}

// Snapshot holds every collection read from one backup.
type Snapshot struct {
	Accounts     []Account
	Transactions []Transaction
	Transfers    []Transfer
	Links        []SyncLink
	Categories   []Category
}

// DuplicateTitles returns titles shared by more than one non-removed account,
// in order of first appearance.
func (s *Snapshot) DuplicateTitles() []string {
	seen := make(map[string]int)
	var dups []string
	for _, a := range s.Accounts {
		if a.IsRemoved {
			continue
		}
		seen[a.Title]++
		if seen[a.Title] == 2 {
			dups = append(dups, a.Title)
		}
	}
	return dups
}

// Flag is a SQLite boolean column. It accepts 0/1, true/false, numeric
// strings and null (false).
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	switch strings.ToLower(raw) {
	case "", "null", "false", "0":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid flag value: %s", data)
	}
	*f = n != 0
	return nil
}

// Amount is a monetary value in minor units (cents). Null or absent values
// decode as zero.
type Amount int64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*a = Amount(n)
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount value: %s", data)
	}
	*a = Amount(math.Round(f))
	return nil
}
