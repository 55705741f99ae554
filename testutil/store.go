package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateStoreDB creates a throwaway SQLite database file with the
// courierKV table and returns its path
func CreateStoreDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courier.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS courierKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create courierKV table: %v", err)
	}

	return path
}

// SeedStoreDB inserts key-value pairs into the store database at path
func SeedStoreDB(t *testing.T, path string, pairs map[string]string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	insertSQL := `
		INSERT INTO courierKV (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	for key, value := range pairs {
		if _, err := db.Exec(insertSQL, key, value); err != nil {
			t.Fatalf("Failed to seed %s: %v", key, err)
		}
	}
}
