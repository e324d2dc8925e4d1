package beancount

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/mm-ledger/pkg/pathutil"
)

// MainFile is the name of the top-level Beancount file that includes every
// generated month file.
const MainFile = "main.beancount"

// Repository defines the interface for Beancount file operations.
type Repository interface {
	// WriteMonth replaces the content of a monthly file
	WriteMonth(yearMonth string, body string) error

	// ReadMonthFile reads the content of a monthly file
	ReadMonthFile(yearMonth string) (string, error)

	// MonthFileExists checks if a monthly file exists
	MonthFileExists(yearMonth string) bool

	// GetMonthFilesInYear gets all monthly files in a year
	GetMonthFilesInYear(year string) ([]string, error)

	// WriteMain writes the top-level file with options, open directives and includes
	WriteMain(currency string, accounts, months []string) (string, error)
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// WriteMonth replaces a monthly file with a header followed by body.
// Files are rewritten on every run so regenerating the same ledger yields
// identical output.
func (r *FileSystemRepository) WriteMonth(yearMonth string, body string) error {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return fmt.Errorf("failed to get month file path: %w", err)
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	content := generateFileHeader(yearMonth) + body
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// ReadMonthFile reads the content of a monthly file.
// Returns empty string if file doesn't exist.
func (r *FileSystemRepository) ReadMonthFile(yearMonth string) (string, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}

	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), nil
}

// MonthFileExists checks if a monthly file exists.
func (r *FileSystemRepository) MonthFileExists(yearMonth string) bool {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return false
	}

	return r.pathResolver.FileExists(filePath)
}

// GetMonthFilesInYear gets all monthly files in a year.
// Returns a slice of year-month strings (e.g., ["2024-01", "2024-02"]).
func (r *FileSystemRepository) GetMonthFilesInYear(year string) ([]string, error) {
	yearDir := r.pathResolver.GetYearDir(year)
	if !r.pathResolver.FileExists(yearDir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(yearDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var monthFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) == ".beancount" {
			monthFiles = append(monthFiles, strings.TrimSuffix(name, ".beancount"))
		}
	}

	return monthFiles, nil
}

// WriteMain writes main.beancount under the Beancount root and returns its path.
// Accounts are opened at 1970-01-01 so every posting date is covered.
func (r *FileSystemRepository) WriteMain(currency string, accounts, months []string) (string, error) {
	mainPath := filepath.Join(r.pathResolver.GetBeancountDir(), MainFile)
	if err := r.pathResolver.EnsureParentDir(mainPath); err != nil {
		return "", fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	if err := os.WriteFile(mainPath, []byte(FormatMain(currency, accounts, months)), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return mainPath, nil
}

// FormatMain renders the top-level Beancount file.
func FormatMain(currency string, accounts, months []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("option \"title\" \"Ledger\"\noption \"operating_currency\" %q\n\n", currency))

	for _, account := range accounts {
		sb.WriteString(fmt.Sprintf("1970-01-01 open %s %s\n", account, currency))
	}
	if len(accounts) > 0 {
		sb.WriteString("\n")
	}

	sorted := append([]string(nil), months...)
	sort.Strings(sorted)
	for _, ym := range sorted {
		if len(ym) < 7 {
			continue
		}
		sb.WriteString(fmt.Sprintf("include \"%s/%s.beancount\"\n", ym[:4], ym))
	}

	return sb.String()
}

// GroupByMonth groups transactions by the YYYY-MM prefix of their date,
// keeping their relative order, and returns the sorted month keys.
func GroupByMonth(txns []Transaction) (map[string][]Transaction, []string) {
	groups := make(map[string][]Transaction)
	var months []string
	for _, txn := range txns {
		if len(txn.Date) < 7 {
			continue
		}
		ym := txn.Date[:7]
		if _, ok := groups[ym]; !ok {
			months = append(months, ym)
		}
		groups[ym] = append(groups[ym], txn)
	}
	sort.Strings(months)
	return groups, months
}

// generateFileHeader generates a header comment for a monthly file.
func generateFileHeader(yearMonth string) string {
	return fmt.Sprintf("; Beancount file for %s\n\n", yearMonth)
}
