package cellar

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/bankowy11-lgtm/vinoScans/internal/wine"
)

// historyKey is the single row under which the serialized history lives.
// The history is one small ordered list, so it is stored as a keyed blob
// rather than spread over a relational schema.
const historyKey = "scan_history"

// SQLiteStore persists the history in a single-key table in a SQLite file.
// The driver is pure Go (modernc.org/sqlite), so the daemon stays cgo-free.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the history database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads and deserializes the history blob. An absent row is an empty
// history; a blob that fails to parse is an error the caller recovers from.
func (s *SQLiteStore) Load(ctx context.Context) ([]wine.Record, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM state WHERE key = ?`, historyKey).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history blob: %w", err)
	}

	var records []wine.Record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("parse history blob: %w", err)
	}
	return records, nil
}

// Save serializes the history and replaces the blob in one statement.
func (s *SQLiteStore) Save(ctx context.Context, records []wine.Record) error {
	if records == nil {
		records = []wine.Record{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serialize history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, historyKey, blob)
	if err != nil {
		return fmt.Errorf("write history blob: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
