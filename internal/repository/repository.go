package repository

import (
	"context"
	"errors"

	"github.com/SergeiKhy/quicklink/internal/models"
)

var (
	ErrURLNotFound        = errors.New("url not found")
	ErrURLInactive        = errors.New("url is deactivated")
	ErrInvariantViolation = errors.New("write rejected by storage constraint")
)

// CounterRepository hands out monotonically increasing totals per key.
// AddAndGet must be linearizable per key: it is the only synchronization
// point between service instances.
type CounterRepository interface {
	AddAndGet(ctx context.Context, key string, delta int64) (int64, error)
}

// URLRepository stores URL records keyed by short code.
// Field updates on an unknown code return ErrURLNotFound. SetExpiresAt and
// IncrementClicks only apply to active records and return ErrURLInactive
// otherwise; the activity check and the write are one atomic step.
type URLRepository interface {
	// Save is an unconditional upsert keyed by record.Code.
	Save(ctx context.Context, record *models.URLRecord) error
	GetByCode(ctx context.Context, code string) (*models.URLRecord, error)
	Exists(ctx context.Context, code string) (bool, error)
	Deactivate(ctx context.Context, code string) error
	// SetExpiresAt sets or, with nil, clears the expiry.
	SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error
	// IncrementClicks adds one to the stored click count atomically.
	IncrementClicks(ctx context.Context, code string) error
}

// EventSink receives click events. Publish is best effort.
type EventSink interface {
	Publish(ctx context.Context, event *models.ClickEvent) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
