package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryURLRepository(t *testing.T) {
	runURLRepositoryContract(t, NewMemoryURLRepository())
}

func TestMemoryCounterRepository(t *testing.T) {
	runCounterRepositoryContract(t, NewMemoryCounterRepository())
}

func TestMemoryURLRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryURLRepository()

	rec := sampleRecord("0000009")
	rec.ExpiresAt = int64Ptr(10)
	require.NoError(t, repo.Save(ctx, rec))

	// mutating the caller's record must not leak into the store
	*rec.ExpiresAt = 99
	rec.Active = false

	got, err := repo.GetByCode(ctx, "0000009")
	require.NoError(t, err)
	assert.Equal(t, int64(10), *got.ExpiresAt)
	assert.True(t, got.Active)

	*got.ExpiresAt = 42
	again, err := repo.GetByCode(ctx, "0000009")
	require.NoError(t, err)
	assert.Equal(t, int64(10), *again.ExpiresAt)
}

func TestMemoryCounterRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryCounterRepository()
	_, err := repo.AddAndGet(ctx, "k", 1)
	assert.ErrorIs(t, err, context.Canceled)

	// a failed call leaves the counter untouched
	v, err := repo.AddAndGet(context.Background(), "k", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
