// Package database provides SQLite storage for session entries and feed snapshots.
package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/studx/homefeed/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_entries (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		feed TEXT PRIMARY KEY,
		offers TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- Session entries ---

// GetSetting returns the session entry stored under key, or ErrNotFound.
func (db *DB) GetSetting(key string) (string, error) {
	var val string
	err := db.conn.QueryRow("SELECT value FROM session_entries WHERE name = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return val, err
}

// SetSetting stores a session entry.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec("INSERT INTO session_entries (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value", key, value)
	return err
}

// DeleteSetting removes a setting. Deleting a missing key is not an error.
func (db *DB) DeleteSetting(key string) error {
	_, err := db.conn.Exec("DELETE FROM session_entries WHERE name = ?", key)
	return err
}

// --- Snapshot Methods ---

// SaveSnapshot replaces the stored snapshot of a feed.
func (db *DB) SaveSnapshot(feed string, offers []model.ExchangeOffer, fetchedAt time.Time) error {
	data, err := encodeOffers(offers)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO snapshots (feed, offers, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(feed) DO UPDATE SET offers = excluded.offers, fetched_at = excluded.fetched_at`,
		feed, data, fetchedAt.UTC())
	return err
}

// LoadSnapshot returns the stored snapshot of a feed.
func (db *DB) LoadSnapshot(feed string) (*model.Snapshot, error) {
	var data string
	var fetchedAt time.Time
	err := db.conn.QueryRow("SELECT offers, fetched_at FROM snapshots WHERE feed = ?", feed).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(feed, data, fetchedAt)
}

func encodeOffers(offers []model.ExchangeOffer) (string, error) {
	if offers == nil {
		offers = []model.ExchangeOffer{}
	}
	data, err := json.Marshal(offers)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

func decodeSnapshot(feed, data string, fetchedAt time.Time) (*model.Snapshot, error) {
	snap := &model.Snapshot{Feed: feed, FetchedAt: fetchedAt}
	if err := json.Unmarshal([]byte(data), &snap.Offers); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", feed, err)
	}
	return snap, nil
}
