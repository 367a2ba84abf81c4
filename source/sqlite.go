package source

import (
	"context"
	"database/sql"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// SQLite is a Fetcher backed by a parameters table in a SQLite database.
type SQLite struct {
	db  *sql.DB
	cfg config
}

var _ cache.Fetcher = (*SQLite)(nil)

// NewSQLite opens the database at dbPath, creating the parameters table if
// needed. If dbPath is empty or ":memory:", an in-memory database is used.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (*SQLite, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	// each :memory: connection is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	s := &SQLite{db: db, cfg: applyOptions(opts)}

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if _, err := db.ExecContext(qctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enabling WAL")
	}
	if _, err := db.ExecContext(qctx, `CREATE TABLE IF NOT EXISTS parameters (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating parameters table")
	}
	return s, nil
}

func (s *SQLite) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.queryTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *SQLite) GetParameter(ctx context.Context, name string) (string, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// Get returns the full stored Parameter for name.
func (s *SQLite) Get(ctx context.Context, name string) (*Parameter, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	p := Parameter{Name: name}
	var updatedAt int64
	err := s.db.QueryRowContext(qctx,
		`SELECT value, version, updated_at FROM parameters WHERE name = ?`, name,
	).Scan(&p.Value, &p.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError(err, name)
	}
	if err != nil {
		return nil, transportError(err, "sqlite get %q", name)
	}
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &p, nil
}

// Put upserts value under name and returns the new version.
func (s *SQLite) Put(ctx context.Context, name, value string) (int64, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	var version int64
	err := s.db.QueryRowContext(qctx,
		`INSERT INTO parameters (name, value, version, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, version = parameters.version + 1, updated_at = excluded.updated_at
		RETURNING version`,
		name, value, time.Now().UnixNano(),
	).Scan(&version)
	if err != nil {
		return 0, transportError(err, "sqlite put %q", name)
	}
	return version, nil
}

// Delete removes name, reporting whether it existed.
func (s *SQLite) Delete(ctx context.Context, name string) (bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	result, err := s.db.ExecContext(qctx, `DELETE FROM parameters WHERE name = ?`, name)
	if err != nil {
		return false, transportError(err, "sqlite delete %q", name)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
