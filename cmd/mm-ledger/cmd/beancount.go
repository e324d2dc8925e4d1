package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/export"
)

var dryRun bool

// beancountCmd represents the beancount command.
var beancountCmd = &cobra.Command{
	Use:   "beancount",
	Short: "Export the ledger to Beancount files",
	Long: `Convert output.json to Beancount plain-text accounting files.

One file is written per month under <beancount>/<YYYY>/<YYYY-MM>.beancount,
plus a main.beancount that opens every account and includes each month.
Files are rewritten on every run.

Example:
  mm-ledger beancount
  mm-ledger beancount --dry-run`,
	Run: runBeancount,
}

func init() {
	beancountCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")
}

func runBeancount(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)

	ledger, err := export.ReadLedger(pathResolver.GetLedgerPath())
	exitOnError(err, "failed to read ledger (run reconcile first)")

	cvtr := beancount.NewConverter(cfg.Currency)

	if dryRun {
		txns := cvtr.ConvertLedger(ledger)
		fmt.Print(beancount.FormatMain(cvtr.Currency(), beancount.Accounts(txns), nil))
		fmt.Println()
		fmt.Print(cvtr.FormatMonth(txns))
		slog.Info("Dry run: no files written", "transactions", len(txns))
		return
	}

	repo := beancount.NewFileSystemRepository(pathResolver)
	months, err := cvtr.Book(repo, ledger)
	exitOnError(err, "failed to write beancount files")

	fmt.Printf("Wrote %d month files to %s\n", len(months), pathResolver.GetBeancountDir())
	slog.Info("Beancount export completed successfully", "entries", len(ledger))
}
