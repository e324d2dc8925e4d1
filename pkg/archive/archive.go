// Package archive unpacks .mmbackup files, which are zip archives holding
// the application's SQLite database.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	// BackupExt is the extension of backup files.
	BackupExt = ".mmbackup"
	// DatabaseName is the SQLite file expected inside a backup.
	DatabaseName = "myFinance.db"
)

// ErrDatabaseNotFound is returned when an extracted backup lacks DatabaseName.
var ErrDatabaseNotFound = errors.New(DatabaseName + " not found in extracted archive")

// FindBackup returns the first backup file in dir, in lexical order.
// found is false when the directory holds none.
func FindBackup(dir string) (path string, found bool, err error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+BackupExt))
	if err != nil {
		return "", false, fmt.Errorf("failed to search backups: %w", err)
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Strings(matches)
	return matches[0], true, nil
}

// RenameToZip renames a backup file to the same name with a .zip extension
// and returns the new path.
func RenameToZip(backupPath string) (string, error) {
	zipPath := strings.TrimSuffix(backupPath, BackupExt) + ".zip"
	if err := os.Rename(backupPath, zipPath); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", backupPath, err)
	}
	return zipPath, nil
}

// Extract unpacks every file of the zip archive into destDir and returns the
// path of the extracted database.
func Extract(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extract directory: %w", err)
	}

	for _, f := range r.File {
		if err := extractFile(f, destDir); err != nil {
			return "", err
		}
	}

	return DatabasePath(destDir)
}

// DatabasePath returns the path of the database inside an extract directory.
func DatabasePath(extractDir string) (string, error) {
	path := filepath.Join(extractDir, DatabaseName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrDatabaseNotFound
		}
		return "", fmt.Errorf("failed to stat database: %w", err)
	}
	return path, nil
}

func extractFile(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)
	// Entries must stay inside destDir.
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal file path in archive: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}
