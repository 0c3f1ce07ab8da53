package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleRecord(code string) *models.URLRecord {
	return &models.URLRecord{
		Code:        code,
		Destination: "https://example.com/" + code,
		CreatedAt:   1_700_000_000,
		Active:      true,
	}
}

// runURLRepositoryContract exercises behavior every URLRepository backend must share.
func runURLRepositoryContract(t *testing.T, repo URLRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		rec := sampleRecord("0000001")
		rec.ExpiresAt = int64Ptr(1_700_086_400)
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.GetByCode(ctx, "0000001")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		rec := sampleRecord("0000002")
		require.NoError(t, repo.Save(ctx, rec))

		rec.Destination = "https://example.org/other"
		rec.IsAlias = true
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.GetByCode(ctx, "0000002")
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/other", got.Destination)
		assert.True(t, got.IsAlias)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := repo.GetByCode(ctx, "absent")
		assert.ErrorIs(t, err, ErrURLNotFound)

		ok, err := repo.Exists(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, repo.Deactivate(ctx, "absent"), ErrURLNotFound)
		assert.ErrorIs(t, repo.SetExpiresAt(ctx, "absent", int64Ptr(1)), ErrURLNotFound)
		assert.ErrorIs(t, repo.IncrementClicks(ctx, "absent"), ErrURLNotFound)
	})

	t.Run("exists", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, sampleRecord("my-alias")))

		ok, err := repo.Exists(ctx, "my-alias")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("deactivate is repeatable", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, sampleRecord("0000003")))

		require.NoError(t, repo.Deactivate(ctx, "0000003"))
		require.NoError(t, repo.Deactivate(ctx, "0000003"))

		got, err := repo.GetByCode(ctx, "0000003")
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("set and clear expiry", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, sampleRecord("0000004")))

		require.NoError(t, repo.SetExpiresAt(ctx, "0000004", int64Ptr(1_702_592_000)))
		got, err := repo.GetByCode(ctx, "0000004")
		require.NoError(t, err)
		require.NotNil(t, got.ExpiresAt)
		assert.Equal(t, int64(1_702_592_000), *got.ExpiresAt)

		require.NoError(t, repo.SetExpiresAt(ctx, "0000004", nil))
		got, err = repo.GetByCode(ctx, "0000004")
		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("deactivated record rejects updates", func(t *testing.T) {
		rec := sampleRecord("0000006")
		rec.ExpiresAt = int64Ptr(1_700_086_400)
		rec.ClickCount = 4
		require.NoError(t, repo.Save(ctx, rec))
		require.NoError(t, repo.Deactivate(ctx, "0000006"))

		assert.ErrorIs(t, repo.SetExpiresAt(ctx, "0000006", int64Ptr(1_800_000_000)), ErrURLInactive)
		assert.ErrorIs(t, repo.SetExpiresAt(ctx, "0000006", nil), ErrURLInactive)
		assert.ErrorIs(t, repo.IncrementClicks(ctx, "0000006"), ErrURLInactive)

		got, err := repo.GetByCode(ctx, "0000006")
		require.NoError(t, err)
		require.NotNil(t, got.ExpiresAt)
		assert.Equal(t, int64(1_700_086_400), *got.ExpiresAt)
		assert.Equal(t, int64(4), got.ClickCount)
	})

	t.Run("concurrent click increments", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, sampleRecord("0000005")))

		const n = 50
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.IncrementClicks(ctx, "0000005"))
			}()
		}
		wg.Wait()

		got, err := repo.GetByCode(ctx, "0000005")
		require.NoError(t, err)
		assert.Equal(t, int64(n), got.ClickCount)
	})
}

// runCounterRepositoryContract checks that totals are cumulative and never handed out twice.
func runCounterRepositoryContract(t *testing.T, repo CounterRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("cumulative", func(t *testing.T) {
		v, err := repo.AddAndGet(ctx, "contract_a", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), v)

		v, err = repo.AddAndGet(ctx, "contract_a", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(200), v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		v, err := repo.AddAndGet(ctx, "contract_b", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("concurrent totals are distinct", func(t *testing.T) {
		const n = 40
		results := make(chan int64, n)
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := repo.AddAndGet(ctx, "contract_c", 10)
				if assert.NoError(t, err) {
					results <- v
				}
			}()
		}
		wg.Wait()
		close(results)

		seen := make(map[int64]bool, n)
		for v := range results {
			assert.False(t, seen[v], "total %d returned twice", v)
			seen[v] = true
		}
		assert.Len(t, seen, n)
		assert.True(t, seen[int64(n*10)])
	})
}
