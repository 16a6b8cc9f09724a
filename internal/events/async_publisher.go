package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrPublisherClosed = errors.New("event publisher closed")

type AsyncPublisherConfig struct {
	// BufferSize is the number of events held before new ones are dropped
	BufferSize int
	// PublishTimeout bounds each delivery to the underlying publisher
	PublishTimeout time.Duration
	// OnDrop is called for every event that could not be delivered
	OnDrop func(event *Event, reason string)
}

// AsyncPublisher hands events to a background goroutine so callers never wait
// on the transport. A full buffer drops the event with a log line.
type AsyncPublisher struct {
	next   EventPublisher
	logger *slog.Logger
	cfg    AsyncPublisherConfig

	queue chan *Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsyncPublisher(next EventPublisher, logger *slog.Logger, cfg AsyncPublisherConfig) *AsyncPublisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}

	p := &AsyncPublisher{
		next:   next,
		logger: logger,
		cfg:    cfg,
		queue:  make(chan *Event, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the event and returns immediately
func (p *AsyncPublisher) Publish(ctx context.Context, event *Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(event, "closed")
		return ErrPublisherClosed
	}

	select {
	case p.queue <- event:
		return nil
	default:
		p.drop(event, "buffer_full")
		return nil
	}
}

// Close stops accepting events, drains the queue and closes the next publisher
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PublishTimeout)
		err := p.next.Publish(ctx, event)
		cancel()

		if err != nil {
			p.logger.Error("Failed to publish event",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
			p.drop(event, "publish_failed")
		}
	}
}

func (p *AsyncPublisher) drop(event *Event, reason string) {
	if reason != "publish_failed" {
		p.logger.Warn("Dropping event", "event_id", event.ID, "event_type", event.Type, "reason", reason)
	}
	if p.cfg.OnDrop != nil {
		p.cfg.OnDrop(event, reason)
	}
}
