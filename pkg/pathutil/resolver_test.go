package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	p := New(Config{InputDir: "in", ExtractDir: "ex", OutputDir: "out"})

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"input", p.GetInputDir(), "in"},
		{"extract", p.GetExtractDir(), "ex"},
		{"database", p.GetDatabasePath(), filepath.Join("out", "ledger.db")},
		{"ledger", p.GetLedgerPath(), filepath.Join("out", "output.json")},
		{"balances", p.GetBalancesPath(), filepath.Join("out", "balances.json")},
		{"beancount", p.GetBeancountDir(), filepath.Join("out", "beancount")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, expected %q", tt.got, tt.expected)
			}
		})
	}
}

func TestNew_Overrides(t *testing.T) {
	p := New(Config{OutputDir: "out", DatabasePath: "/tmp/x.db", BeancountDir: "/books"})

	if p.GetDatabasePath() != "/tmp/x.db" {
		t.Errorf("GetDatabasePath() = %q, expected /tmp/x.db", p.GetDatabasePath())
	}
	if p.GetBeancountDir() != "/books" {
		t.Errorf("GetBeancountDir() = %q, expected /books", p.GetBeancountDir())
	}
}

func TestGetMonthFilePath(t *testing.T) {
	p := New(Config{OutputDir: "out", BeancountDir: "books"})

	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2024-01", filepath.Join("books", "2024", "2024-01.beancount"), false},
		{"2024-1", "", true},
		{"24-01", "", true},
		{"2024-01-15", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := p.GetMonthFilePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetMonthFilePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("GetMonthFilePath(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	p := New(Config{OutputDir: root})
	file := filepath.Join(root, "a", "b", "c.txt")

	if err := p.EnsureParentDir(file); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}
	if p.FileExists(file) {
		t.Errorf("FileExists(%q) = true, expected false", file)
	}
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !p.FileExists(file) {
		t.Errorf("FileExists(%q) = false, expected true", file)
	}
}
