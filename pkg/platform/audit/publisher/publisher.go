// Package publisher decouples audit emission from persistence. Services emit
// events; the publisher forwards them to a store either synchronously or
// through a buffered channel drained by a background goroutine.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	audit "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
)

// Publisher forwards audit events to a store.
type Publisher struct {
	store audit.Store

	inbox  chan audit.Event
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. Emission then never blocks the request path; events are
// drained on Close.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets the logger used for drop/append failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given store. Without options it
// appends synchronously, which is what transactional emission inside RunInTx
// requires: a failed append aborts the surrounding transaction.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an audit event. In synchronous mode the store error is
// returned so callers inside a transaction can abort on it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-p.done:
		return p.store.Append(ctx, event)
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			p.append(event)
		case <-p.done:
			for {
				select {
				case event := <-p.inbox:
					p.append(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) append(event audit.Event) {
	if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
		p.logger.Error("audit append failed", "action", event.Action, "error", err)
	}
}

// Close drains pending events and stops the background goroutine.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}
