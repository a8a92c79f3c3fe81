package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestBooksMigrationContainsInventoryConstraints(t *testing.T) {
	content := readMigration(t, "*_create_books.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS books",
		"CHECK (total_copies >= 1)",
		"CHECK (copies_available >= 0 AND copies_available <= total_copies)",
		"CONSTRAINT books_isbn_key UNIQUE (isbn)",
		"DROP TABLE IF EXISTS books",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLoansMigrationContainsReferences(t *testing.T) {
	content := readMigration(t, "*_create_loans.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS loans",
		"FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE RESTRICT",
		"FOREIGN KEY (reader_id) REFERENCES readers(id) ON DELETE RESTRICT",
		"CHECK (due_date >= lend_date)",
		"WHERE is_returned = false",
		"DROP TABLE IF EXISTS loans",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
