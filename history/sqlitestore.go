package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteStoreSchema = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversion_history_source
	ON conversion_history (source, created_at);`

// SQLiteStore persists conversion history in SQLite, surviving restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed history store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("history: sqlite store dsn is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: sqlite store open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite store set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteStoreSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: sqlite store create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("history: encode entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO conversion_history (id, source, created_at, payload)
VALUES (?, ?, ?, ?)`,
		entry.ID, entry.Source, entry.Timestamp.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("history: sqlite append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, source string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT payload
FROM conversion_history
WHERE source = ?
ORDER BY created_at ASC, id ASC`, source)
	if err != nil {
		return nil, fmt.Errorf("history: sqlite list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("history: sqlite scan: %w", err)
		}
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("history: decode entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: sqlite rows: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Latest(ctx context.Context, source string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
SELECT payload
FROM conversion_history
WHERE source = ?
ORDER BY created_at DESC, id DESC
LIMIT 1`, source).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("history: sqlite latest: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("history: decode entry: %w", err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `
DELETE FROM conversion_history
WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("history: sqlite prune: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: sqlite prune count: %w", err)
	}
	return int(affected), nil
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
