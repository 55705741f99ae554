package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists pending messages and intents in a courierKV
// table so they survive a process restart. One entry per key; a new
// write overwrites the old. Last write wins; there is no locking across
// processes, a single active session per user is assumed.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and creates if needed) the store at path
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Key: path, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Key: path, Err: err}
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS courierKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Key: path, Err: fmt.Errorf("create table: %w", err)}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM courierKV WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", &StoreError{Op: "get", Key: key, Err: err}
	}
	if !value.Valid {
		return "", nil
	}
	return value.String, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO courierKV (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM courierKV WHERE key = ?", key); err != nil {
		return &StoreError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStore) List(prefix string) ([]KeyValuePair, error) {
	query := `SELECT key, value FROM courierKV WHERE key LIKE ? ESCAPE '\' AND value IS NOT NULL`
	rows, err := s.db.Query(query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, &StoreError{Op: "list", Key: prefix, Err: err}
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, &StoreError{Op: "list", Key: prefix, Err: err}
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Key: prefix, Err: err}
	}

	return pairs, nil
}

// escapeLike escapes LIKE metacharacters so a key prefix matches
// literally
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
