// Package cmd provides CLI commands for mm-ledger.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/config"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/pathutil"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mm-ledger",
	Short: "Reconcile a personal finance backup into a ledger and balances",
	Long: `mm-ledger turns a personal finance app backup (.mmbackup) into a
deduplicated, date-ordered ledger and a per-account balance summary.

It supports:
- Extracting the backup database and exporting its tables to JSON
- Resolving accounts and categories through sync links
- Dropping transfer duplicates booked as transactions
- Writing output.json, balances.json and a SQLite results database
- Dashboard statistics and Beancount export

Example:
  mm-ledger reconcile
  mm-ledger stats --period current-year
  mm-ledger beancount --dry-run`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(debug)
	},
}

func setupLogging(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(beancountCmd)
}

// loadConfig loads and validates the configuration every command needs.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	// DEBUG may only be set in the .env file
	if cfg.Debug && !debug {
		setupLogging(true)
	}

	if err := cfg.Validate(
		[]string{"paths", "input"},
		[]string{"paths", "extract"},
		[]string{"paths", "output"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	return cfg
}

func newPathResolver(cfg *config.Config) *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		InputDir:     cfg.Paths.InputDir,
		ExtractDir:   cfg.Paths.ExtractDir,
		OutputDir:    cfg.Paths.OutputDir,
		DatabasePath: cfg.Paths.DBPath,
		BeancountDir: cfg.Paths.BeancountDir,
	})
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
