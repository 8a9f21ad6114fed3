// Package manifest persists, per output file, the content hash of the last
// write. It lets repeated runs skip unchanged documents and report files the
// current plan no longer produces.
package manifest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed build manifest.
// Use ":memory:" for tests, or a file path for persistent storage.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens a manifest database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize manifest schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_files_build_id ON files(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Hash returns the manifest hash for content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether path already carries the given content hash.
func (s *Store) Unchanged(ctx context.Context, path, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM files WHERE path = ?", path).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query manifest entry: %w", err)
	}
	return stored == hash, nil
}

// Record upserts the manifest entry for path, stamping it with the current
// build. Skipped-as-unchanged files must also be recorded so they keep the
// current build id.
func (s *Store) Record(ctx context.Context, path, hash, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (path, hash, build_id, updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, build_id = excluded.build_id, updated = excluded.updated`,
		path, hash, buildID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record manifest entry: %w", err)
	}
	return nil
}

// Stale returns paths recorded by earlier builds that the current build did
// not touch, and removes their entries.
func (s *Store) Stale(ctx context.Context, buildID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path FROM files WHERE build_id != ? ORDER BY path", buildID)
	if err != nil {
		return nil, fmt.Errorf("query stale entries: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan stale entry: %w", err)
		}
		stale = append(stale, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(stale) > 0 {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE build_id != ?", buildID); err != nil {
			return nil, fmt.Errorf("prune stale entries: %w", err)
		}
	}
	return stale, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
