package mocks

import (
	"context"
	"sync"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/SergeiKhy/quicklink/internal/repository"
)

// MockURLRepository implements repository.URLRepository for testing.
// Set the *Err fields to make the matching call fail.
type MockURLRepository struct {
	mu   sync.RWMutex
	urls map[string]*models.URLRecord

	SaveErr      error
	GetErr       error
	ExistsErr    error
	IncrementErr error

	SaveCalls       int
	DeactivateCalls int
	SetExpiryCalls  int
	IncrementCalls  int
}

func NewMockURLRepository() *MockURLRepository {
	return &MockURLRepository{
		urls: make(map[string]*models.URLRecord),
	}
}

func (m *MockURLRepository) Save(ctx context.Context, record *models.URLRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.urls[record.Code] = record.Clone()
	return nil
}

func (m *MockURLRepository) GetByCode(ctx context.Context, code string) (*models.URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	rec, exists := m.urls[code]
	if !exists {
		return nil, repository.ErrURLNotFound
	}
	return rec.Clone(), nil
}

func (m *MockURLRepository) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, exists := m.urls[code]
	return exists, nil
}

func (m *MockURLRepository) Deactivate(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeactivateCalls++
	rec, exists := m.urls[code]
	if !exists {
		return repository.ErrURLNotFound
	}
	rec.Active = false
	return nil
}

func (m *MockURLRepository) SetExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetExpiryCalls++
	rec, exists := m.urls[code]
	if !exists {
		return repository.ErrURLNotFound
	}
	if !rec.Active {
		return repository.ErrURLInactive
	}
	rec.ExpiresAt = nil
	if expiresAt != nil {
		v := *expiresAt
		rec.ExpiresAt = &v
	}
	return nil
}

func (m *MockURLRepository) IncrementClicks(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IncrementCalls++
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	rec, exists := m.urls[code]
	if !exists {
		return repository.ErrURLNotFound
	}
	if !rec.Active {
		return repository.ErrURLInactive
	}
	rec.ClickCount++
	return nil
}

// Put stores a record directly, bypassing call counters.
func (m *MockURLRepository) Put(record *models.URLRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[record.Code] = record.Clone()
}

// Record returns the stored copy of a record, or nil.
func (m *MockURLRepository) Record(code string) *models.URLRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.urls[code].Clone()
}

func (m *MockURLRepository) Calls() (save, deactivate, setExpiry, increment int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SaveCalls, m.DeactivateCalls, m.SetExpiryCalls, m.IncrementCalls
}

// MockCounterRepository implements repository.CounterRepository for testing.
// Each call adds delta to the running total unless Err is set.
type MockCounterRepository struct {
	mu     sync.Mutex
	totals map[string]int64
	calls  int

	Err error
}

func NewMockCounterRepository() *MockCounterRepository {
	return &MockCounterRepository{
		totals: make(map[string]int64),
	}
}

func (m *MockCounterRepository) AddAndGet(ctx context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return 0, m.Err
	}
	m.totals[key] += delta
	return m.totals[key], nil
}

func (m *MockCounterRepository) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MockCounterRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockEventSink implements repository.EventSink and keeps every published event.
type MockEventSink struct {
	mu     sync.Mutex
	events []*models.ClickEvent

	Err error
}

func NewMockEventSink() *MockEventSink {
	return &MockEventSink{}
}

func (m *MockEventSink) Publish(ctx context.Context, event *models.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventSink) Events() []*models.ClickEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ClickEvent(nil), m.events...)
}
