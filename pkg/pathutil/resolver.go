// Package pathutil provides centralized path management for inputs, extracted
// archives and published outputs.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output file names inside the output directory.
const (
	LedgerFile   = "output.json"
	BalancesFile = "balances.json"
	DatabaseFile = "ledger.db"
)

// PathResolver manages paths for input exports, extraction and outputs.
type PathResolver struct {
	inputDir     string
	extractDir   string
	outputDir    string
	databasePath string
	beancountDir string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// InputDir holds the .mmbackup file and the per-table JSON exports
	InputDir string
	// ExtractDir is where the backup archive is unpacked
	ExtractDir string
	// OutputDir receives the published ledger and balances
	OutputDir string
	// DatabasePath is the path to the SQLite results database
	DatabasePath string
	// BeancountDir is the root directory for generated Beancount files
	BeancountDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {OutputDir}/ledger.db
// If BeancountDir is empty, it defaults to {OutputDir}/beancount
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.OutputDir, DatabaseFile)
	}

	beancountDir := config.BeancountDir
	if beancountDir == "" {
		beancountDir = filepath.Join(config.OutputDir, "beancount")
	}

	return &PathResolver{
		inputDir:     config.InputDir,
		extractDir:   config.ExtractDir,
		outputDir:    config.OutputDir,
		databasePath: dbPath,
		beancountDir: beancountDir,
	}
}

// GetInputDir returns the input directory.
func (p *PathResolver) GetInputDir() string {
	return p.inputDir
}

// GetExtractDir returns the extraction directory.
func (p *PathResolver) GetExtractDir() string {
	return p.extractDir
}

// GetDatabasePath returns the results database path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetLedgerPath returns the path of the published ledger.
func (p *PathResolver) GetLedgerPath() string {
	return filepath.Join(p.outputDir, LedgerFile)
}

// GetBalancesPath returns the path of the published balance summary.
func (p *PathResolver) GetBalancesPath() string {
	return filepath.Join(p.outputDir, BalancesFile)
}

// GetBeancountDir returns the Beancount root directory.
func (p *PathResolver) GetBeancountDir() string {
	return p.beancountDir
}

// GetYearDir returns the Beancount directory path for a year.
// Example: output/beancount/2024
func (p *PathResolver) GetYearDir(year string) string {
	return filepath.Join(p.beancountDir, year)
}

// GetMonthFilePath returns the Beancount file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: output/beancount/2024/2024-01.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	yearDir := p.GetYearDir(parts[0])
	filename := fmt.Sprintf("%s.beancount", yearMonth)

	return filepath.Join(yearDir, filename), nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
