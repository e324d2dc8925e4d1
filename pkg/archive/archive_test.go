package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestFindBackup(t *testing.T) {
	dir := t.TempDir()

	_, found, err := FindBackup(dir)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mmbackup"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mmbackup"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "account.json"), nil, 0644))

	path, found, err := FindBackup(dir)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, filepath.Join(dir, "a.mmbackup"), path)
}

func TestRenameAndExtract(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "2024.mmbackup")
	writeZip(t, backup, map[string]string{
		DatabaseName:        "sqlite bytes",
		"images/receipt.txt": "receipt",
	})

	zipPath, err := RenameToZip(backup)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024.zip"), zipPath)
	assert.NoFileExists(t, backup)

	extractDir := filepath.Join(dir, "estratto")
	dbPath, err := Extract(zipPath, extractDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(extractDir, DatabaseName), dbPath)

	data, err := os.ReadFile(filepath.Join(extractDir, "images", "receipt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "receipt", string(data))
}

func TestExtract_MissingDatabase(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "backup.zip")
	writeZip(t, zipPath, map[string]string{"other.db": "x"})

	_, err := Extract(zipPath, filepath.Join(dir, "out"))
	assert.True(t, errors.Is(err, ErrDatabaseNotFound))
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{"../escape.txt": "x"})

	_, err := Extract(zipPath, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}
