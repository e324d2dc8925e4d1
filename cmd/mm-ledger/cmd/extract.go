package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/archive"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/pathutil"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the backup and export its tables to JSON",
	Long: `Extract the .mmbackup file found in the input directory.

This command:
1. Renames the backup to .zip
2. Unpacks it into the extract directory
3. Checks that the required tables exist
4. Writes one <table>.json file per table into the input directory

Example:
  mm-ledger extract`,
	Run: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)

	found, err := extractBackup(cmd.Context(), pathResolver)
	exitOnError(err, "failed to extract backup")

	if !found {
		fmt.Printf("No %s file in %s\n", archive.BackupExt, pathResolver.GetInputDir())
		if mmbackup.HasExport(pathResolver.GetInputDir()) {
			fmt.Println("Existing JSON tables will be used by reconcile")
		}
		return
	}
	fmt.Println("Backup extracted")
}

// extractBackup unpacks the first backup of the input directory and exports
// its tables as JSON next to it. found is false when there is no backup.
func extractBackup(ctx context.Context, pathResolver *pathutil.PathResolver) (found bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	backupPath, found, err := archive.FindBackup(pathResolver.GetInputDir())
	if err != nil || !found {
		return false, err
	}
	slog.Info("Found backup", "path", backupPath)

	zipPath, err := archive.RenameToZip(backupPath)
	if err != nil {
		return true, err
	}

	dbPath, err := archive.Extract(zipPath, pathResolver.GetExtractDir())
	if err != nil {
		return true, err
	}
	slog.Debug("Extracted database", "path", dbPath)

	conn, err := db.OpenSource(dbPath)
	if err != nil {
		return true, err
	}
	defer conn.Close()

	if err := conn.RequireTables(ctx, mmbackup.RequiredTables); err != nil {
		return true, err
	}

	written, err := conn.ExportTables(ctx, pathResolver.GetInputDir())
	if err != nil {
		return true, err
	}
	slog.Info("Exported tables", "count", len(written), "dir", pathResolver.GetInputDir())

	return true, nil
}
