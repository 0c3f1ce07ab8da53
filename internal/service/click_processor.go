package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/SergeiKhy/quicklink/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultWorkerCount   = 3
	defaultChannelBuffer = 1000
	defaultClickTimeout  = 3 * time.Second
)

// ClickRecorder accounts for a successful redirect. Record never fails the caller.
type ClickRecorder interface {
	Record(ctx context.Context, event *models.ClickEvent)
}

// ClickProcessor records clicks on a pool of background workers.
type ClickProcessor interface {
	ClickRecorder
	Start()
	// Stop refuses new events, drains the queue and waits for the workers.
	Stop()
	Stats() ChannelStats
}

// ClickProcessorOptions sizes the pool. Workers below one and a negative Buffer take the defaults.
type ClickProcessorOptions struct {
	Workers int
	Buffer  int
	// Timeout bounds the click increment and the analytics publish separately.
	Timeout time.Duration
}

// ChannelStats describes the worker pool for monitoring.
type ChannelStats struct {
	BufferSize  int   `json:"buffer_size"`
	BufferUsed  int   `json:"buffer_used"`
	WorkerCount int   `json:"worker_count"`
	Processed   int64 `json:"processed"`
	Dropped     int64 `json:"dropped"`
}

// clickHandler applies one event: click increment first, then the analytics publish.
type clickHandler struct {
	urls    repository.URLRepository
	sink    repository.EventSink
	timeout time.Duration
	logger  *zap.Logger
}

func (h *clickHandler) handle(ctx context.Context, event *models.ClickEvent) {
	incCtx, cancel := context.WithTimeout(ctx, h.timeout)
	err := h.urls.IncrementClicks(incCtx, event.Code)
	cancel()
	switch {
	case errors.Is(err, repository.ErrURLInactive):
		h.logger.Debug("Click on deactivated URL not counted", zap.String("short_code", event.Code))
	case err != nil:
		h.logger.Warn("Failed to increment click count",
			zap.String("short_code", event.Code),
			zap.Error(err),
		)
	}

	pubCtx, cancel := context.WithTimeout(ctx, h.timeout)
	err = h.sink.Publish(pubCtx, event)
	cancel()
	if err != nil {
		h.logger.Warn("Failed to publish click event",
			zap.String("short_code", event.Code),
			zap.Error(err),
		)
	}
}

type clickProcessor struct {
	handler      *clickHandler
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent
	workerCount  int
	wg           sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	processed atomic.Int64
	dropped   atomic.Int64
}

// NewClickProcessor creates a new click processor. Events queue until Start.
func NewClickProcessor(
	urls repository.URLRepository,
	sink repository.EventSink,
	opts ClickProcessorOptions,
	logger *zap.Logger,
) ClickProcessor {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkerCount
	}
	if opts.Buffer < 0 {
		opts.Buffer = defaultChannelBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &clickProcessor{
		handler:      newClickHandler(urls, sink, opts.Timeout, logger),
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, opts.Buffer),
		workerCount:  opts.Workers,
	}
}

func newClickHandler(urls repository.URLRepository, sink repository.EventSink, timeout time.Duration, logger *zap.Logger) *clickHandler {
	if sink == nil {
		sink = repository.NoopSink{}
	}
	if timeout <= 0 {
		timeout = defaultClickTimeout
	}
	return &clickHandler{urls: urls, sink: sink, timeout: timeout, logger: logger}
}

func (p *clickProcessor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	p.logger.Info("Starting click workers", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *clickProcessor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.clickChannel)
	started := p.started
	p.mu.Unlock()

	p.logger.Info("Stopping click processor", zap.Int("queued", len(p.clickChannel)))

	if !started {
		// no workers to drain the queue
		for event := range p.clickChannel {
			p.process(event)
		}
	}
	p.wg.Wait()

	p.logger.Info("Click processor stopped",
		zap.Int64("processed", p.processed.Load()),
		zap.Int64("dropped", p.dropped.Load()),
	)
}

func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Click worker started", zap.Int("id", id))
	for event := range p.clickChannel {
		p.process(event)
	}
	p.logger.Debug("Click worker stopped", zap.Int("id", id))
}

func (p *clickProcessor) process(event *models.ClickEvent) {
	p.handler.handle(context.Background(), event)
	p.processed.Add(1)
}

// Record queues the event without blocking. A full buffer drops it.
func (p *clickProcessor) Record(ctx context.Context, event *models.ClickEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.dropped.Add(1)
		p.logger.Warn("Click processor stopped, event dropped", zap.String("short_code", event.Code))
		return
	}

	select {
	case p.clickChannel <- event:
	default:
		p.dropped.Add(1)
		p.logger.Warn("Click buffer full, event dropped", zap.String("short_code", event.Code))
	}
}

func (p *clickProcessor) Stats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
		Processed:   p.processed.Load(),
		Dropped:     p.dropped.Load(),
	}
}

// syncClickRecorder applies each event on the caller's goroutine.
type syncClickRecorder struct {
	handler *clickHandler
}

// NewSyncClickRecorder records clicks inline. Failures are logged and swallowed
// exactly as in the worker pool.
func NewSyncClickRecorder(urls repository.URLRepository, sink repository.EventSink, timeout time.Duration, logger *zap.Logger) ClickRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &syncClickRecorder{handler: newClickHandler(urls, sink, timeout, logger)}
}

func (r *syncClickRecorder) Record(ctx context.Context, event *models.ClickEvent) {
	r.handler.handle(context.WithoutCancel(ctx), event)
}
