package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"photodelta/internal/phash"
	"photodelta/internal/scan"
)

// Entry is one indexed image. Entries are immutable for a given file
// signature; a changed signature replaces the whole row.
type Entry struct {
	Path string
	Ext  string
	Hash phash.Fingerprint
}

// Store manages one set's persistent image index backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to an index database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Entries returns all current entries in path order.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, ext, phash FROM images ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var hashHex string
		if err := rows.Scan(&e.Path, &e.Ext, &hashHex); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Hash, err = phash.ParseHex(hashHex)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Path, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of indexed entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM images").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Upsert inserts or replaces the entry for a path together with its current
// file signature.
func (s *Store) Upsert(ctx context.Context, e Entry, sig scan.Signature) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO images (path, ext, phash, mtime_ns, size)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            ext = excluded.ext,
            phash = excluded.phash,
            mtime_ns = excluded.mtime_ns,
            size = excluded.size`,
		e.Path, e.Ext, e.Hash.Hex(), sig.ModTimeNS, sig.Size,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.Path, err)
	}
	return nil
}

// DeletePaths removes entries for paths no longer present on disk.
func (s *Store) DeletePaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM images WHERE path = ?")
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, p := range paths {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// signatures loads the stored signature per path.
func (s *Store) signatures(ctx context.Context) (map[string]scan.Signature, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, mtime_ns, size FROM images")
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	defer rows.Close()

	sigs := make(map[string]scan.Signature)
	for rows.Next() {
		var path string
		var sig scan.Signature
		if err := rows.Scan(&path, &sig.ModTimeNS, &sig.Size); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		sigs[path] = sig
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}
	return sigs, nil
}
