package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists history entries in a SQLite database so the log survives
// restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the history database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS translations (
		id text PRIMARY KEY,
		source_text text NOT NULL,
		translation text NOT NULL,
		source_lang text NOT NULL,
		target_lang text NOT NULL,
		backend text NOT NULL,
		model_path text NOT NULL DEFAULT '',
		explained integer NOT NULL DEFAULT 0,
		created_at integer NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts or replaces one entry.
func (s *Store) Save(entry Entry) error {
	query := `INSERT OR REPLACE INTO translations
		(id, source_text, translation, source_lang, target_lang, backend, model_path, explained, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	explain := 0
	if entry.Explain {
		explain = 1
	}

	_, err := s.db.Exec(query,
		entry.ID, entry.SourceText, entry.Translation,
		entry.SourceLang, entry.TargetLang, entry.Backend,
		entry.ModelPath, explain, entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit entries, newest first.
func (s *Store) LoadRecent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, source_text, translation, source_lang, target_lang,
		backend, model_path, explained, created_at
		FROM translations ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var explain int
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.SourceText, &entry.Translation,
			&entry.SourceLang, &entry.TargetLang, &entry.Backend,
			&entry.ModelPath, &explain, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Explain = explain != 0
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// DeleteAll removes every stored entry.
func (s *Store) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM translations`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
