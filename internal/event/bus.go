package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/coremark/internal/event/topic"
)

// Handler processes a published event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, recovered any)

// Publisher is the publishing half of a Bus.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	IsActive() bool
	Cancel()
}

// Stats contains bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// Bus delivers events synchronously to matching subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription

	panicHandler PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	errors    atomic.Uint64
	panics    atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the function called when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = h
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	active  atomic.Bool
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) IsActive() bool     { return s.active.Load() }
func (s *subscription) Cancel()            { s.active.Store(false) }

// Subscribe registers handler for every event whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := &subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// SubscribeFunc is a convenience wrapper around Subscribe.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn)
}

// Unsubscribe cancels and removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to all matching subscribers before returning.
// Handler errors are counted, not returned; the first one is reported
// only when every handler failed.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.IsActive() && eventTopic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)

	var firstErr error
	failed := 0
	for _, s := range matched {
		if err := b.dispatch(ctx, event, s.handler); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		b.delivered.Add(1)
	}
	if failed > 0 && failed == len(matched) {
		return firstErr
	}
	return nil
}

// dispatch runs a single handler with panic recovery.
func (b *Bus) dispatch(ctx context.Context, event any, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(event, r)
			}
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	if err := h.Handle(ctx, event); err != nil {
		b.errors.Add(1)
		return err
	}
	return nil
}

// Stats returns current counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, s := range b.subs {
		if s.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.published.Load(),
		EventsDelivered:   b.delivered.Load(),
		HandlerErrors:     b.errors.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: active,
	}
}
