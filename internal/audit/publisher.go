package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrPublisherClosed is returned by Emit once Close has been called.
var ErrPublisherClosed = errors.New("audit publisher closed")

// Publisher stamps session events and hands them to a Store, inline or
// through a bounded queue drained by one goroutine.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	// mu guards queue against Emit racing Close.
	mu      sync.RWMutex
	queue   chan Event
	closed  bool
	drained chan struct{}
	dropped atomic.Int64
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for background delivery. Emit
// never blocks on the store in this mode; overflow is dropped and counted.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.drained = make(chan struct{})
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer close(p.drained)
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"install_id", event.InstallID,
			)
		}
	}
}

// Close stops accepting events and waits for queued ones to reach the
// store. It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.drained != nil {
		<-p.drained
	}
}

// Dropped reports how many events overflowed the async queue.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Emit fills in a missing id and timestamp, then stores or queues the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
	default:
		p.dropped.Add(1)
		p.logger.Warn("audit queue full, event dropped",
			"action", event.Action,
			"install_id", event.InstallID,
		)
	}
	return nil
}
