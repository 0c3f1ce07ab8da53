package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SergeiKhy/quicklink/internal/service"
	"github.com/SergeiKhy/quicklink/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type counterFunc func(ctx context.Context, key string, delta int64) (int64, error)

func (f counterFunc) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	return f(ctx, key, delta)
}

func TestIdentifierAllocator_BatchesStoreCalls(t *testing.T) {
	counter := mocks.NewMockCounterRepository()
	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 100}, zaptest.NewLogger(t))

	ctx := context.Background()
	var last int64
	for i := 0; i < 250; i++ {
		id, err := alloc.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i), id)
		last = id
	}

	assert.Equal(t, int64(249), last)
	assert.Equal(t, 3, counter.Calls())
	assert.Equal(t, int64(50), alloc.Remaining())
}

func TestIdentifierAllocator_Defaults(t *testing.T) {
	var gotKey string
	var gotDelta int64
	counter := counterFunc(func(ctx context.Context, key string, delta int64) (int64, error) {
		gotKey, gotDelta = key, delta
		return delta, nil
	})

	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{}, nil)
	id, err := alloc.NextID(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), id)
	assert.Equal(t, "global_counter", gotKey)
	assert.Equal(t, int64(100), gotDelta)
}

func TestIdentifierAllocator_ConcurrentCallsAreDistinct(t *testing.T) {
	counter := mocks.NewMockCounterRepository()
	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 10}, nil)

	const goroutines, perGoroutine = 8, 125
	ids := make(chan int64, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				id, err := alloc.NextID(context.Background())
				if assert.NoError(t, err) {
					ids <- id
				}
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	// one process with no failures leaves no gaps
	assert.Len(t, seen, goroutines*perGoroutine)
	for i := int64(0); i < goroutines*perGoroutine; i++ {
		assert.True(t, seen[i], "id %d missing", i)
	}
	assert.Equal(t, goroutines*perGoroutine/10, counter.Calls())
}

func TestIdentifierAllocator_SharedCounterAcrossInstances(t *testing.T) {
	counter := mocks.NewMockCounterRepository()
	a := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 100}, nil)
	b := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 100}, nil)

	ctx := context.Background()
	seen := make(map[int64]string)
	for i := 0; i < 300; i++ {
		for name, alloc := range map[string]*service.IdentifierAllocator{"a": a, "b": b} {
			id, err := alloc.NextID(ctx)
			require.NoError(t, err)
			if prev, dup := seen[id]; dup {
				t.Fatalf("id %d issued by both %s and %s", id, prev, name)
			}
			seen[id] = name
		}
	}
	assert.Len(t, seen, 600)
}

func TestIdentifierAllocator_StoreFailureLeavesRangeExhausted(t *testing.T) {
	counter := mocks.NewMockCounterRepository()
	counter.SetErr(errors.New("connection refused"))
	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 100}, zaptest.NewLogger(t))

	ctx := context.Background()
	_, err := alloc.NextID(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAllocationUnavailable)
	assert.Equal(t, int64(0), alloc.Remaining())

	_, err = alloc.NextID(ctx)
	assert.ErrorIs(t, err, service.ErrAllocationUnavailable)
	assert.Equal(t, 2, counter.Calls())

	// the failed attempts skipped nothing
	counter.SetErr(nil)
	id, err := alloc.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.Equal(t, int64(99), alloc.Remaining())
}

func TestIdentifierAllocator_TotalBelowBatchIsRejected(t *testing.T) {
	counter := counterFunc(func(ctx context.Context, key string, delta int64) (int64, error) {
		return 5, nil
	})
	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{BatchSize: 100}, nil)

	_, err := alloc.NextID(context.Background())
	assert.ErrorIs(t, err, service.ErrAllocationUnavailable)
	assert.Equal(t, int64(0), alloc.Remaining())
}

func TestIdentifierAllocator_Timeout(t *testing.T) {
	counter := counterFunc(func(ctx context.Context, key string, delta int64) (int64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	alloc := service.NewIdentifierAllocator(counter, service.AllocatorOptions{Timeout: 20 * time.Millisecond}, nil)

	_, err := alloc.NextID(context.Background())
	assert.ErrorIs(t, err, service.ErrAllocationUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
