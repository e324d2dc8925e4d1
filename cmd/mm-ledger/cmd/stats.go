package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/export"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/report"
)

var (
	statsYears  []int
	statsPeriod string
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display dashboard figures computed from output.json.

Shows:
- Total income, expenses and net (transfers excluded)
- Final cumulative balance of the selected period
- Expenses by category
- Results database summary, when present

Example:
  mm-ledger stats
  mm-ledger stats --year 2023 --year 2024
  mm-ledger stats --period last-year`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntSliceVar(&statsYears, "year", nil, "only include these years (repeatable)")
	statsCmd.Flags().StringVar(&statsPeriod, "period", string(report.PeriodAll), "balance series period: all, last-year, current-year")
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)

	period, err := report.ParsePeriod(statsPeriod)
	exitOnError(err, "invalid period")

	ledger, err := export.ReadLedger(pathResolver.GetLedgerPath())
	exitOnError(err, "failed to read ledger (run reconcile first)")

	ledger = report.Filter{Years: statsYears}.Apply(ledger)
	totals := report.ComputeTotals(ledger)
	series := report.BalanceSeries(ledger, period.Start(time.Now()))
	money := report.NewFormatter(cfg.Currency)

	fmt.Println("\n=== Ledger Statistics ===")
	fmt.Printf("Entries:        %d\n", totals.Entries)
	fmt.Printf("Total income:   %s\n", money.Format(totals.Income))
	fmt.Printf("Total expenses: %s\n", money.Format(totals.Expenses))
	fmt.Printf("Net:            %s\n", money.Format(totals.Net))
	fmt.Printf("Transfers:      %s\n", money.Format(totals.Transfers))

	if len(series) > 0 {
		first, last := series[0], series[len(series)-1]
		fmt.Printf("Balance (%s): %s on %s -> %s on %s\n",
			period, money.Format(first.Balance), first.Date, money.Format(last.Balance), last.Date)
	}

	if categories := report.ExpensesByCategory(ledger); len(categories) > 0 {
		fmt.Println("\nExpenses by category:")
		for _, c := range categories {
			fmt.Printf("  %-30s %s\n", c.Category, money.Format(c.Total))
		}
	}

	dbPath := pathResolver.GetDatabasePath()
	if pathResolver.FileExists(dbPath) {
		slog.Debug("Opening database", "path", dbPath)
		conn, err := db.Open(dbPath)
		exitOnError(err, "failed to open database")
		defer conn.Close()

		stats, err := db.NewResults(conn).GetStats(cmd.Context())
		exitOnError(err, "failed to get statistics")

		fmt.Println("\n=== Results Database ===")
		fmt.Printf("Stored entries:  %d\n", stats.TotalEntries)
		fmt.Printf("Stored balances: %d\n", stats.TotalBalances)
		if stats.GeneratedAt.Valid {
			fmt.Printf("Generated at:    %s\n", stats.GeneratedAt.String)
		} else {
			fmt.Printf("Generated at:    (never)\n")
		}
		if stats.Source.Valid {
			fmt.Printf("Source:          %s\n", stats.Source.String)
		}
	}

	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
