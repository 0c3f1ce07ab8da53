package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/SergeiKhy/quicklink/internal/service"
	"github.com/SergeiKhy/quicklink/internal/service/mocks"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv wires the services over in-memory mocks with a synchronous click recorder.
type testEnv struct {
	urls     *mocks.MockURLRepository
	counter  *mocks.MockCounterRepository
	sink     *mocks.MockEventSink
	clock    *fakeClock
	registry service.URLRegistry
	resolver service.RedirectResolver
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zaptest.NewLogger(t)
	env := &testEnv{
		urls:    mocks.NewMockURLRepository(),
		counter: mocks.NewMockCounterRepository(),
		sink:    mocks.NewMockEventSink(),
		clock:   newFakeClock(),
	}

	alloc := service.NewIdentifierAllocator(env.counter, service.AllocatorOptions{BatchSize: 100}, logger)
	env.registry = service.NewURLRegistry(env.urls, alloc, service.RegistryOptions{
		BaseURL: "https://skt.inc",
		Now:     env.clock.Now,
	}, logger)

	clicks := service.NewSyncClickRecorder(env.urls, env.sink, time.Second, logger)
	env.resolver = service.NewRedirectResolver(env.urls, clicks, service.ResolverOptions{Now: env.clock.Now}, logger)
	return env
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
