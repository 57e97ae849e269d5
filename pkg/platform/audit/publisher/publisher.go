// Package publisher emits audit events to a store, either synchronously or
// through a bounded async buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "memberd/pkg/domain"
	audit "memberd/pkg/platform/audit"
)

// Appender receives a copy of every emitted event. Sinks stream events to
// external systems and must not be load-bearing: a sink failure is logged,
// never returned.
type Appender interface {
	Append(ctx context.Context, event audit.Event) error
}

// Publisher records audit events. In sync mode Emit appends directly to the
// store; with an async buffer Emit enqueues and a background goroutine drains.
type Publisher struct {
	store audit.Store
	sinks []Appender

	inbox chan audit.Event
	done  chan struct{}

	mu      sync.RWMutex
	closing bool
	closed  sync.Once
}

type Option func(*Publisher)

// WithSink forwards every event to an additional sink after the store append.
func WithSink(sink Appender) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithAsyncBuffer makes Emit non-blocking by buffering up to size events.
// When the buffer is full, new events are dropped and logged rather than
// blocking the request path.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event. A zero timestamp is filled in with the current time.
// Emit never fails the caller's operation in async mode; events emitted after
// Close are dropped.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			return err
		}
		p.forward(ctx, event)
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closing {
		slog.Warn("audit publisher closed, dropping event", "action", event.Action)
		return nil
	}
	select {
	case p.inbox <- event:
	default:
		slog.Warn("audit buffer full, dropping event", "action", event.Action)
	}
	return nil
}

// List returns the audit trail for a member.
func (p *Publisher) List(ctx context.Context, memberID id.MemberID) ([]audit.Event, error) {
	return p.store.ListByMember(ctx, memberID)
}

// Close stops the background drainer, flushing any buffered events first.
// Safe to call multiple times.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil {
			close(p.done)
			return
		}
		p.mu.Lock()
		p.closing = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			slog.Error("append audit event", "action", event.Action, "error", err)
			continue
		}
		p.forward(context.Background(), event)
	}
}

func (p *Publisher) forward(ctx context.Context, event audit.Event) {
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			slog.Error("forward audit event", "action", event.Action, "error", err)
		}
	}
}
