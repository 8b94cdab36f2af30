package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "shortlink/pkg/domain-errors"
	audit "shortlink/pkg/platform/audit"
	"shortlink/pkg/platform/audit/metrics"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// Publisher captures structured audit events and hands them to a sink. In
// async mode events are queued and written by a single background goroutine.
type Publisher struct {
	sink    audit.Sink
	events  chan audit.Event
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	async   bool

	mu     sync.RWMutex
	closed bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(sink audit.Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if p.metrics != nil {
			p.metrics.DecQueueDepth()
		}
		p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.sink.Write(ctx, event)
	if p.metrics != nil {
		p.metrics.ObserveWriteDuration(time.Since(start).Seconds())
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.IncWriteFailures("publisher")
		}
		if p.logger != nil {
			p.logger.Error("failed to write audit event",
				"error", err,
				"action", event.Action,
				"event_id", event.ID,
			)
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.IncEventsProcessed()
	}
	return nil
}

// Emit stamps the event with an ID and timestamp and writes or enqueues it.
// A full buffer drops the event rather than blocking the caller.
func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = p.now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if !p.async {
		return p.write(ctx, base)
	}

	select {
	case p.events <- base:
		if p.metrics != nil {
			p.metrics.IncEventsEnqueued()
			p.metrics.IncQueueDepth()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.metrics != nil {
			p.metrics.IncEventsDropped()
		}
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", base.Action,
				"event_id", base.ID,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}

// Close stops accepting events and waits for queued ones to drain, or for ctx
// to end. It is safe to call more than once.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.async {
		close(p.events)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
