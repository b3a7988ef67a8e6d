// Package database provides storage backends for session entries and feed snapshots.
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/studx/homefeed/internal/model"
)

// ErrNotFound is returned when a key or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// Session entries, keyed by name.
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error

	// Snapshot operations
	SaveSnapshot(feed string, offers []model.ExchangeOffer, fetchedAt time.Time) error
	LoadSnapshot(feed string) (*model.Snapshot, error)
}

// Open opens the backend named by driver ("sqlite" or "postgres").
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return New(dsn)
	case "postgres":
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
