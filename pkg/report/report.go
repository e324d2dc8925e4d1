// Package report computes dashboard figures from a reconciled ledger: totals,
// cumulative balance series and expenses grouped by category.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/reconcile"
)

// Period selects the window of a balance series.
type Period string

const (
	PeriodAll         Period = "all"
	PeriodLastYear    Period = "last-year"
	PeriodCurrentYear Period = "current-year"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodAll, PeriodLastYear, PeriodCurrentYear:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q: expected all, last-year or current-year", s)
	}
}

// Start returns the first date (YYYY-MM-DD) included in the period, or an
// empty string for PeriodAll.
func (p Period) Start(today time.Time) string {
	switch p {
	case PeriodLastYear:
		return today.AddDate(0, 0, -365).Format("2006-01-02")
	case PeriodCurrentYear:
		return fmt.Sprintf("%04d-01-01", today.Year())
	default:
		return ""
	}
}

// Filter narrows a ledger by year and kind. Empty lists match everything.
type Filter struct {
	Years []int
	Kinds []reconcile.Kind
}

// Apply returns the entries matching f, preserving order.
func (f Filter) Apply(ledger []reconcile.Entry) []reconcile.Entry {
	years := make(map[string]bool, len(f.Years))
	for _, y := range f.Years {
		years[strconv.Itoa(y)] = true
	}
	kinds := make(map[reconcile.Kind]bool, len(f.Kinds))
	for _, k := range f.Kinds {
		kinds[k] = true
	}

	var out []reconcile.Entry
	for _, e := range ledger {
		if len(years) > 0 && (len(e.Date) < 4 || !years[e.Date[:4]]) {
			continue
		}
		if len(kinds) > 0 && !kinds[e.Kind] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Totals are the headline figures of a ledger. Net excludes transfers.
type Totals struct {
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Transfers decimal.Decimal
	Net       decimal.Decimal
	Entries   int
}

// ComputeTotals sums the ledger by kind.
func ComputeTotals(ledger []reconcile.Entry) Totals {
	var t Totals
	for _, e := range ledger {
		switch e.Kind {
		case reconcile.KindIncome:
			t.Income = t.Income.Add(e.Value)
		case reconcile.KindExpense:
			t.Expenses = t.Expenses.Add(e.Value)
		case reconcile.KindTransfer:
			t.Transfers = t.Transfers.Add(e.Value)
		}
		t.Entries++
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// Point is the cumulative balance at the end of a day.
type Point struct {
	Date    string
	Balance decimal.Decimal
}

// BalanceSeries returns one point per day with movements on or after start,
// carrying the running net of income minus expenses. Movements before start
// seed the first point. An empty start includes every day.
func BalanceSeries(ledger []reconcile.Entry, start string) []Point {
	entries := append([]reconcile.Entry(nil), ledger...)
	sort.SliceStable(entries, func(i, j int) bool {
		return day(entries[i].Date) < day(entries[j].Date)
	})

	var running decimal.Decimal
	var points []Point
	for _, e := range entries {
		d := day(e.Date)
		running = running.Add(signed(e))
		if d < start {
			continue
		}
		if n := len(points); n > 0 && points[n-1].Date == d {
			points[n-1].Balance = running
			continue
		}
		points = append(points, Point{Date: d, Balance: running})
	}
	return points
}

// CategoryTotal is the sum of expenses booked to one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// ExpensesByCategory groups expenses by category, largest first. Ties keep
// category name order.
func ExpensesByCategory(ledger []reconcile.Entry) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range ledger {
		if e.Kind != reconcile.KindExpense {
			continue
		}
		sums[e.Category] = sums[e.Category].Add(e.Value)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, total := range sums {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func signed(e reconcile.Entry) decimal.Decimal {
	switch e.Kind {
	case reconcile.KindIncome:
		return e.Value
	case reconcile.KindExpense:
		return e.Value.Neg()
	default:
		return decimal.Zero
	}
}

func day(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}
