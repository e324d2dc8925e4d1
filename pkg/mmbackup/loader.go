package mmbackup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrMissingSource is matched by every MissingSourceError.
var ErrMissingSource = errors.New("missing source file")

// MissingSourceError reports a required table export that does not exist.
type MissingSourceError struct {
	Table string
	Path  string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("missing source file for table %q: %s", e.Table, e.Path)
}

// Is makes errors.Is(err, ErrMissingSource) match.
func (e *MissingSourceError) Is(target error) bool {
	return target == ErrMissingSource
}

// TablePath returns the JSON export path of a table inside dir.
func TablePath(dir, table string) string {
	return filepath.Join(dir, table+".json")
}

// Load reads the five required table exports from dir.
// A missing file is a hard error; the run cannot proceed without it.
func Load(dir string) (*Snapshot, error) {
	var s Snapshot
	var err error

	if s.Accounts, err = readTable[Account](dir, TableAccount); err != nil {
		return nil, err
	}
	if s.Transactions, err = readTable[Transaction](dir, TableTransaction); err != nil {
		return nil, err
	}
	if s.Transfers, err = readTable[Transfer](dir, TableTransfer); err != nil {
		return nil, err
	}
	if s.Links, err = readTable[SyncLink](dir, TableSyncLink); err != nil {
		return nil, err
	}
	if s.Categories, err = readTable[Category](dir, TableCategory); err != nil {
		return nil, err
	}

	return &s, nil
}

// HasExport reports whether every required table export exists in dir.
func HasExport(dir string) bool {
	for _, table := range RequiredTables {
		if _, err := os.Stat(TablePath(dir, table)); err != nil {
			return false
		}
	}
	return true
}

func readTable[T any](dir, table string) ([]T, error) {
	path := TablePath(dir, table)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &MissingSourceError{Table: table, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return rows, nil
}
