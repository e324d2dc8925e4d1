package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/export"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/reconcile"
)

var (
	rulesPath     string
	noCorrections bool
	noDB          bool
)

// reconcileCmd represents the reconcile command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Build the ledger and balance summary",
	Long: `Build the ledger and the per-account balance summary.

This command:
1. Extracts the backup if one is present, otherwise uses the JSON tables
2. Resolves accounts and categories through sync links
3. Drops removed records and transfer duplicates
4. Writes output.json and balances.json
5. Replaces the results in the SQLite database

Example:
  mm-ledger reconcile
  mm-ledger reconcile --rules rules.yaml --no-corrections`,
	Run: runReconcile,
}

func init() {
	// Flags
	reconcileCmd.Flags().StringVar(&rulesPath, "rules", "", "rules file (YAML), overrides MM_RULES_PATH")
	reconcileCmd.Flags().BoolVar(&noCorrections, "no-corrections", false, "disable manual balance corrections")
	reconcileCmd.Flags().BoolVar(&noDB, "no-db", false, "do not write the results database")
}

func runReconcile(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)

	found, err := extractBackup(ctx, pathResolver)
	exitOnError(err, "failed to extract backup")
	if !found {
		slog.Info("No backup found, using existing JSON tables", "dir", pathResolver.GetInputDir())
	}

	snapshot, err := mmbackup.Load(pathResolver.GetInputDir())
	exitOnError(err, "failed to load tables")

	if dups := snapshot.DuplicateTitles(); len(dups) > 0 {
		slog.Warn("Duplicate account titles", "titles", dups)
	}

	rules := reconcile.DefaultRules()
	if rulesPath == "" {
		rulesPath = cfg.Rules.Path
	}
	if rulesPath != "" {
		slog.Debug("Loading rules", "path", rulesPath)
		rules, err = reconcile.LoadRules(rulesPath)
		exitOnError(err, "failed to load rules")
	}
	if noCorrections {
		rules = rules.WithoutCorrections()
	}

	result := reconcile.Reconcile(snapshot, rules)

	skipped := make([]any, 0, 2*len(result.Stats.Skipped))
	for reason, n := range result.Stats.Skipped {
		skipped = append(skipped, string(reason), n)
	}
	slog.Info("Reconciled",
		"entries", len(result.Ledger),
		"transactions", result.Stats.Transactions,
		"transfers", result.Stats.Transfers,
		"skipped", result.Stats.TotalSkipped(),
		"balances", len(result.Balances),
	)
	slog.Debug("Skipped records", skipped...)

	ledgerPath := pathResolver.GetLedgerPath()
	exitOnError(export.WriteLedger(ledgerPath, result.Ledger), "failed to write ledger")
	balancesPath := pathResolver.GetBalancesPath()
	exitOnError(export.WriteBalances(balancesPath, result.Balances), "failed to write balances")

	if !noDB {
		dbPath := pathResolver.GetDatabasePath()
		slog.Debug("Opening database", "path", dbPath)

		conn, err := db.Open(dbPath)
		exitOnError(err, "failed to open database")
		defer conn.Close()

		err = db.NewResults(conn).Replace(ctx, result.Ledger, result.Balances, pathResolver.GetInputDir(), time.Now())
		exitOnError(err, "failed to store results")
		slog.Info("Stored results", "db", conn.GetPath())
	}

	fmt.Printf("Ledger:   %s (%d entries)\n", ledgerPath, len(result.Ledger))
	fmt.Printf("Balances: %s (%d accounts)\n", balancesPath, len(result.Balances))
	if result.Stats.TotalSkipped() > 0 {
		fmt.Printf("Skipped:  %d records\n", result.Stats.TotalSkipped())
	}

	slog.Info("Reconcile completed successfully")
}
