package repository

import (
	"context"
	"sync"

	"github.com/SergeiKhy/quicklink/internal/models"
)

// MemoryCounterRepository keeps counters in process memory. It is linearizable
// within one process only, so it suits single-instance deployments and tests.
type MemoryCounterRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryCounterRepository creates an empty in-process counter.
func NewMemoryCounterRepository() *MemoryCounterRepository {
	return &MemoryCounterRepository{counters: make(map[string]int64)}
}

func (r *MemoryCounterRepository) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[key] += delta
	return r.counters[key], nil
}

// MemoryURLRepository is a map-backed URLRepository. Reads return copies.
type MemoryURLRepository struct {
	mu   sync.RWMutex
	urls map[string]*models.URLRecord
}

// NewMemoryURLRepository creates an empty in-process URL store.
func NewMemoryURLRepository() *MemoryURLRepository {
	return &MemoryURLRepository{urls: make(map[string]*models.URLRecord)}
}

func (r *MemoryURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.urls[record.Code] = record.Clone()
	return nil
}

func (r *MemoryURLRepository) GetByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.urls[code]
	if !ok {
		return nil, ErrURLNotFound
	}
	return rec.Clone(), nil
}

func (r *MemoryURLRepository) Exists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.urls[code]
	return ok, nil
}

func (r *MemoryURLRepository) Deactivate(ctx context.Context, code string) error {
	return r.update(code, func(rec *models.URLRecord) error {
		rec.Active = false
		return nil
	})
}

func (r *MemoryURLRepository) SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	return r.updateActive(code, func(rec *models.URLRecord) {
		if expiresAt == nil {
			rec.ExpiresAt = nil
			return
		}
		v := *expiresAt
		rec.ExpiresAt = &v
	})
}

func (r *MemoryURLRepository) IncrementClicks(ctx context.Context, code string) error {
	return r.updateActive(code, func(rec *models.URLRecord) { rec.ClickCount++ })
}

func (r *MemoryURLRepository) update(code string, fn func(*models.URLRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.urls[code]
	if !ok {
		return ErrURLNotFound
	}
	return fn(rec)
}

func (r *MemoryURLRepository) updateActive(code string, fn func(*models.URLRecord)) error {
	return r.update(code, func(rec *models.URLRecord) error {
		if !rec.Active {
			return ErrURLInactive
		}
		fn(rec)
		return nil
	})
}
