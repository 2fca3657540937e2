// Package hoststore is a reference host-side implementation of the
// data/read, data/write, state/get, and state/set reverse-RPC methods,
// backed by SQLite. skillrt-hostsim uses it so a skill has somewhere
// real to persist to; a production host is free to back these methods
// however it likes.
package hoststore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists one skill's data blobs and state document.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at path and runs
// its migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDB wraps an already-open *sql.DB, skipping migration — used by
// tests that inject a sqlmock connection.
func OpenDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS skill_data (
			skill_id TEXT NOT NULL,
			name     TEXT NOT NULL,
			content  TEXT NOT NULL,
			PRIMARY KEY (skill_id, name)
		);
		CREATE TABLE IF NOT EXISTS skill_state (
			skill_id TEXT PRIMARY KEY,
			document TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate hoststore: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// ReadData returns the named blob for skillID, or "" if it was never
// written.
func (s *Store) ReadData(ctx context.Context, skillID, name string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM skill_data WHERE skill_id = ? AND name = ?`,
		skillID, name,
	).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read data %s/%s: %w", skillID, name, err)
	}
	return content, nil
}

// WriteData upserts the named blob for skillID.
func (s *Store) WriteData(ctx context.Context, skillID, name, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skill_data (skill_id, name, content) VALUES (?, ?, ?)
		 ON CONFLICT(skill_id, name) DO UPDATE SET content = excluded.content`,
		skillID, name, content,
	)
	if err != nil {
		return fmt.Errorf("write data %s/%s: %w", skillID, name, err)
	}
	return nil
}

// GetState returns the skill's persisted key/value state document, or
// an empty map if none exists yet.
func (s *Store) GetState(ctx context.Context, skillID string) (map[string]any, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM skill_state WHERE skill_id = ?`, skillID,
	).Scan(&document)
	if err == sql.ErrNoRows {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state %s: %w", skillID, err)
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(document), &state); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", skillID, err)
	}
	return state, nil
}

// SetState merges partial into the skill's state document and
// persists the result.
func (s *Store) SetState(ctx context.Context, skillID string, partial map[string]any) error {
	current, err := s.GetState(ctx, skillID)
	if err != nil {
		return err
	}
	for k, v := range partial {
		current[k] = v
	}
	document, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", skillID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO skill_state (skill_id, document) VALUES (?, ?)
		 ON CONFLICT(skill_id) DO UPDATE SET document = excluded.document`,
		skillID, string(document),
	)
	if err != nil {
		return fmt.Errorf("set state %s: %w", skillID, err)
	}
	return nil
}
