// Package index persists which library files have already been processed so
// repeated runs skip unchanged containers.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"langmux/internal/services"
)

// Store is a SQLite-backed processed-file index. A file counts as processed
// only while its size and modification time still match the recorded values;
// any change invalidates the entry.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS processed_files (
	path          TEXT PRIMARY KEY,
	size          INTEGER NOT NULL,
	modified_unix INTEGER NOT NULL,
	processed_at  TEXT NOT NULL
);
`

// Open creates or opens the index database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "index", "open", fmt.Sprintf("create %s", filepath.Dir(path)), err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "index", "open", fmt.Sprintf("open %s", path), err)
	}
	// A single writer keeps SQLite happy under WAL.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, services.Wrap(services.ErrFilesystem, "index", "migrate", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarkProcessed records a file as processed at its current size and mtime.
func (s *Store) MarkProcessed(ctx context.Context, path string, size, modifiedUnix int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_files (path, size, modified_unix, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			modified_unix = excluded.modified_unix,
			processed_at = excluded.processed_at`,
		path, size, modifiedUnix, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "index", "mark", path, err)
	}
	return nil
}

// IsProcessed reports whether the file was processed at exactly this size and
// mtime.
func (s *Store) IsProcessed(ctx context.Context, path string, size, modifiedUnix int64) (bool, error) {
	var storedSize, storedMod int64
	err := s.db.QueryRowContext(ctx,
		`SELECT size, modified_unix FROM processed_files WHERE path = ?`, path).
		Scan(&storedSize, &storedMod)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, services.Wrap(services.ErrFilesystem, "index", "lookup", path, err)
	}
	return storedSize == size && storedMod == modifiedUnix, nil
}

// MarkFile stats path and records it as processed.
func (s *Store) MarkFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "index", "stat", path, err)
	}
	return s.MarkProcessed(ctx, path, info.Size(), info.ModTime().Unix())
}

// IsFileProcessed stats path and checks it against the index. Missing files
// report as unprocessed.
func (s *Store) IsFileProcessed(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, services.Wrap(services.ErrFilesystem, "index", "stat", path, err)
	}
	return s.IsProcessed(ctx, path, info.Size(), info.ModTime().Unix())
}

// Forget removes a file from the index.
func (s *Store) Forget(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM processed_files WHERE path = ?`, path); err != nil {
		return services.Wrap(services.ErrFilesystem, "index", "forget", path, err)
	}
	return nil
}

// Count returns the number of indexed files.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_files`).Scan(&n); err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "index", "count", "", err)
	}
	return n, nil
}
