// Package peers caches Telegram peer records in SQLite. Addressing a peer
// over MTProto needs its access hash, which only appears in dialog listings;
// the cache lets `download --id` build an input peer without rescanning all
// dialogs.
package peers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a peer ID is not in the cache.
var ErrNotFound = errors.New("peer not found in cache")

// Peer is a cached conversation entity.
type Peer struct {
	ID         int64
	AccessHash int64
	Kind       string // private, group, channel, unknown
	Name       string
}

// DB is the SQLite-backed peer cache.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the cache at the given path, ensuring the parent
// directory exists, and initializes the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create peer db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open peer db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping peer db at %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS peers (
			id INTEGER PRIMARY KEY,
			access_hash INTEGER NOT NULL DEFAULT 0,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init peer db schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put inserts or updates a peer record.
func (d *DB) Put(ctx context.Context, p Peer) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO peers (id, access_hash, kind, name, updated_at)
		VALUES (?, ?, ?, ?, unixepoch())
		ON CONFLICT(id) DO UPDATE SET
			access_hash = excluded.access_hash,
			kind = excluded.kind,
			name = excluded.name,
			updated_at = excluded.updated_at
	`, p.ID, p.AccessHash, p.Kind, p.Name)
	if err != nil {
		return fmt.Errorf("failed to store peer %d: %w", p.ID, err)
	}
	return nil
}

// Get returns the cached peer for the given ID, or ErrNotFound.
func (d *DB) Get(ctx context.Context, id int64) (Peer, error) {
	var p Peer
	err := d.db.QueryRowContext(ctx,
		`SELECT id, access_hash, kind, name FROM peers WHERE id = ?`, id,
	).Scan(&p.ID, &p.AccessHash, &p.Kind, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Peer{}, ErrNotFound
	}
	if err != nil {
		return Peer{}, fmt.Errorf("failed to load peer %d: %w", id, err)
	}
	return p, nil
}
