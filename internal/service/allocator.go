package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SergeiKhy/quicklink/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize  = 100
	DefaultCounterKey = "global_counter"
)

// IDSource hands out identifiers that are unique across every process sharing the counter store.
type IDSource interface {
	NextID(ctx context.Context) (int64, error)
}

// AllocatorOptions configures range reservation. A zero BatchSize or CounterKey takes the default.
type AllocatorOptions struct {
	BatchSize  int64
	CounterKey string
	// Timeout bounds each counter store round trip. Zero leaves the caller's context as is.
	Timeout time.Duration
}

// IdentifierAllocator reserves identifiers from the counter store in batches
// and serves them from memory. Unused identifiers of a reservation are lost
// when the process exits.
type IdentifierAllocator struct {
	counter repository.CounterRepository
	opts    AllocatorOptions
	logger  *zap.Logger

	mu           sync.Mutex
	nextFree     int64
	exclusiveEnd int64
}

// NewIdentifierAllocator creates an allocator with an empty range; the first NextID reserves one.
func NewIdentifierAllocator(counter repository.CounterRepository, opts AllocatorOptions, logger *zap.Logger) *IdentifierAllocator {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.CounterKey == "" {
		opts.CounterKey = DefaultCounterKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IdentifierAllocator{
		counter: counter,
		opts:    opts,
		logger:  logger,
	}
}

// NextID returns the next identifier, refilling the range from the store when it is exhausted.
// A failed refill leaves the range exhausted so the next call tries the store again.
func (a *IdentifierAllocator) NextID(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.nextFree == a.exclusiveEnd {
		if err := a.refill(ctx); err != nil {
			return 0, err
		}
	}

	id := a.nextFree
	a.nextFree++
	return id, nil
}

func (a *IdentifierAllocator) refill(ctx context.Context) error {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	total, err := a.counter.AddAndGet(ctx, a.opts.CounterKey, a.opts.BatchSize)
	if err != nil {
		a.logger.Error("Failed to reserve identifier range",
			zap.String("counter_key", a.opts.CounterKey),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrAllocationUnavailable, err)
	}
	if total < a.opts.BatchSize {
		a.logger.Error("Counter store returned a total below the batch size",
			zap.String("counter_key", a.opts.CounterKey),
			zap.Int64("total", total),
		)
		return fmt.Errorf("%w: counter total %d below batch size %d", ErrAllocationUnavailable, total, a.opts.BatchSize)
	}

	a.nextFree = total - a.opts.BatchSize
	a.exclusiveEnd = total

	a.logger.Debug("Reserved identifier range",
		zap.Int64("from", a.nextFree),
		zap.Int64("to", a.exclusiveEnd),
	)
	return nil
}

// Remaining reports how many identifiers are left in the current reservation.
func (a *IdentifierAllocator) Remaining() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exclusiveEnd - a.nextFree
}
