// Package publisher delivers audit events to a store, synchronously by
// default or through a buffered channel when a drop-tolerant async mode is
// preferred on the request path.
package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bulletin/pkg/platform/audit"
)

// Publisher emits audit events. Zero-value timestamps and ids are filled in
// at emit time so call sites stay terse.
type Publisher struct {
	store audit.Store

	async  bool
	events chan audit.Event
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer
// size. When the buffer is full, events are dropped rather than blocking the
// request path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.async = true
		p.events = make(chan audit.Event, size)
	}
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.events {
		// Async appends get their own deadline; the emitting request is gone.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = p.store.Append(ctx, event)
		cancel()
	}
}

// Emit records one event. In sync mode the store error is returned; in async
// mode Emit never blocks and never fails.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if !p.async {
		return p.store.Append(ctx, event)
	}

	select {
	case p.events <- event:
	default:
		// Buffer full; drop instead of stalling the request.
	}
	return nil
}

// List returns the audit trail for one subscriber.
func (p *Publisher) List(ctx context.Context, subscriberID uuid.UUID) ([]audit.Event, error) {
	return p.store.ListBySubscriber(ctx, subscriberID)
}

// Close drains pending async events. Safe to call more than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.async {
			close(p.events)
			p.wg.Wait()
		}
	})
}
