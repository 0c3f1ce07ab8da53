package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SergeiKhy/quicklink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewStores_Memory(t *testing.T) {
	cfg := config.Default()

	stores, err := NewStores(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &MemoryURLRepository{}, stores.URLs)
	assert.IsType(t, &MemoryCounterRepository{}, stores.Counter)
	assert.IsType(t, NoopSink{}, stores.Sink)
	assert.Empty(t, stores.Ping(context.Background()))
}

func TestNewStores_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "stores.db")

	stores, err := NewStores(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, stores.URLs.Save(ctx, sampleRecord("0000001")))
	v, err := stores.Counter.AddAndGet(ctx, cfg.Allocator.CounterKey, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v)

	assert.Equal(t, map[string]string{"sqlite": "UP"}, stores.Ping(ctx))
	require.NoError(t, stores.Close())
	// closing twice is harmless
	require.NoError(t, stores.Close())
}

func TestNewStores_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "dynamo"

	_, err := NewStores(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	applied, err := Migrate(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, applied)

	cfg.Storage.Backend = config.BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "migrate.db")
	applied, err = Migrate(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, applied)
}
