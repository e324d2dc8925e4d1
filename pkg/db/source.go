package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrMissingTable is returned when the backup database lacks a required table.
var ErrMissingTable = errors.New("missing table in source database")

// ListTables returns the names of all user tables, in creation order.
func (c *Connection) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// RequireTables checks that every required table exists.
func (c *Connection) RequireTables(ctx context.Context, required []string) error {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}
	for _, t := range required {
		if !present[t] {
			return fmt.Errorf("%w: %s", ErrMissingTable, t)
		}
	}
	return nil
}

// ReadTable returns every row of a table as column/value maps.
// BLOB values are returned as strings and date columns keep their textual
// YYYY-MM-DD form.
func (c *Connection) ReadTable(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			case time.Time:
				row[col] = formatTime(v)
			default:
				row[col] = v
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ExportTables writes every table to dir as <table>.json and returns the
// written paths.
func (c *Connection) ExportTables(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	tables, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, table := range tables {
		rows, err := c.ReadTable(ctx, table)
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(rows, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode table %s: %w", table, err)
		}

		path := filepath.Join(dir, table+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// quoteIdent quotes a table name; "transaction" is a reserved word.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// formatTime undoes the driver's parsing of date-typed columns.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
