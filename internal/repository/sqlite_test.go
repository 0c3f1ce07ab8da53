package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "quicklink.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestSQLiteURLRepository(t *testing.T) {
	runURLRepositoryContract(t, NewSQLiteURLRepository(newTestSQLite(t)))
}

func TestSQLiteCounterRepository(t *testing.T) {
	runCounterRepositoryContract(t, NewSQLiteCounterRepository(newTestSQLite(t)))
}

func TestSQLiteDB_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := NewSQLiteDB(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	_, err = NewSQLiteCounterRepository(db).AddAndGet(ctx, "global_counter", 100)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteURLRepository(db).Save(ctx, sampleRecord("000001c")))
	require.NoError(t, db.Close())

	db, err = NewSQLiteDB(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	v, err := NewSQLiteCounterRepository(db).AddAndGet(ctx, "global_counter", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(200), v)

	ok, err := NewSQLiteURLRepository(db).Exists(ctx, "000001c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteDB_Ping(t *testing.T) {
	db := newTestSQLite(t)
	assert.NoError(t, db.Ping(context.Background()))
}
