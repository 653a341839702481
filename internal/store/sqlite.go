package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps objects as rows in a single-file SQLite database. Each
// row carries a version counter, so it supports conditional writes and can
// reject lost updates across processes.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, file string) (*SQLiteStore, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, errors.New("sqlite store: missing db file")
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with concurrent processes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS objects (
  path    TEXT PRIMARY KEY,
  data    BLOB NOT NULL,
  version INTEGER NOT NULL DEFAULT 0
);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Has(ctx context.Context, path string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM objects WHERE path = ?`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) Get(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM objects WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrObjectNotExist
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SQLiteStore) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO objects(path, data, version) VALUES(?, ?, 1)
ON CONFLICT(path) DO UPDATE SET data = excluded.data, version = objects.version + 1`,
		path, data)
	return err
}

// PutIf writes only when the stored version still equals expect. The check
// and the write share one transaction, so racing writers lose cleanly with
// ErrVersionConflict instead of silently overwriting each other.
func (s *SQLiteStore) PutIf(ctx context.Context, path string, data []byte, expect int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM objects WHERE path = ?`, path).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return err
	}
	if current != expect {
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO objects(path, data, version) VALUES(?, ?, ?)
ON CONFLICT(path) DO UPDATE SET data = excluded.data, version = excluded.version`,
		path, data, expect+1); err != nil {
		return err
	}
	return tx.Commit()
}
