package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studx/homefeed/internal/model"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "homefeed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// storeBackends returns every backend available in this environment.
func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	backends := map[string]Store{"sqlite": openSQLite(t)}
	if dsn := os.Getenv("HOMEFEED_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := NewPostgres(dsn)
		require.NoError(t, err)
		t.Cleanup(func() {
			pg.conn.Exec("DELETE FROM session_entries")
			pg.conn.Exec("DELETE FROM snapshots")
			pg.Close()
		})
		backends["postgres"] = pg
	}
	return backends
}

func TestStore_Settings(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetSetting(model.SessionToken)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.SetSetting(model.SessionToken, "tok-1"))
			require.NoError(t, store.SetSetting(model.SessionToken, "tok-2"))

			val, err := store.GetSetting(model.SessionToken)
			require.NoError(t, err)
			assert.Equal(t, "tok-2", val)

			require.NoError(t, store.DeleteSetting(model.SessionToken))
			require.NoError(t, store.DeleteSetting(model.SessionToken), "deleting a missing key is a no-op")

			_, err = store.GetSetting(model.SessionToken)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Snapshots(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LoadSnapshot(model.FeedPublic)
			assert.ErrorIs(t, err, ErrNotFound)

			at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			first := []model.ExchangeOffer{
				{ID: "1", OwnerID: "a@b.com", University: "UPV", QuantityStudents: 12, AcademicLevel: model.LevelB1, NativeLanguage: "Spanish", TargetLanguage: "English"},
			}
			require.NoError(t, store.SaveSnapshot(model.FeedPublic, first, at))

			second := append(first, model.ExchangeOffer{ID: "2", AcademicLevel: model.LevelC1})
			require.NoError(t, store.SaveSnapshot(model.FeedPublic, second, at.Add(time.Hour)))

			snap, err := store.LoadSnapshot(model.FeedPublic)
			require.NoError(t, err)
			assert.Equal(t, model.FeedPublic, snap.Feed)
			assert.Equal(t, second, snap.Offers)
			assert.True(t, snap.FetchedAt.Equal(at.Add(time.Hour)), "got %v", snap.FetchedAt)
		})
	}
}

func TestStore_EmptySnapshotIsNotNil(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.SaveSnapshot(model.FeedOwned, nil, time.Now()))

	snap, err := db.LoadSnapshot(model.FeedOwned)
	require.NoError(t, err)
	assert.NotNil(t, snap.Offers)
	assert.Empty(t, snap.Offers)
}

func TestOpen(t *testing.T) {
	store, err := Open("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "SQLite", store.DatabaseType())

	_, err = Open("mongo", "")
	assert.Error(t, err)
}
