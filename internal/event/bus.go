package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler receives events. Returning an error does not stop delivery to
// other handlers; it is counted and logged.
type Handler func(ctx context.Context, event any) error

// Subscription identifies a registered handler.
type Subscription struct {
	id      string
	pattern Topic
}

// ID returns the unique subscription identifier.
func (s Subscription) ID() string { return s.id }

// Topic returns the subscribed topic pattern.
func (s Subscription) Topic() Topic { return s.pattern }

type subscriber struct {
	Subscription
	handler Handler
}

// Stats holds delivery counters.
type Stats struct {
	EventsPublished  uint64
	HandlersExecuted uint64
	HandlerErrors    uint64
	HandlerPanics    uint64
	Subscribers      int
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for handler failures.
func WithLogger(l *zap.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Handlers must not publish to the same bus from a
// handler that holds locks the publisher needs.
type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber

	paused atomic.Bool
	logger *zap.Logger

	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, handler Handler) (Subscription, error) {
	if handler == nil {
		return Subscription{}, ErrNilHandler
	}
	if !pattern.Valid() {
		return Subscription{}, ErrInvalidTopic
	}

	sub := subscriber{
		Subscription: Subscription{id: uuid.NewString(), pattern: pattern},
		handler:      handler,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, sub)
	return sub.Subscription, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s.id == sub.id {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = nil
}

// Pause temporarily drops published events.
func (b *Bus) Pause() {
	b.paused.Store(true)
}

// Resume restarts event delivery after a pause.
func (b *Bus) Resume() {
	b.paused.Store(false)
}

// IsPaused returns true if the bus is paused.
func (b *Bus) IsPaused() bool {
	return b.paused.Load()
}

// Publish delivers event to every matching handler and returns the joined
// handler errors. A panicking handler is recovered and reported as a
// PanicError.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	if b.paused.Load() {
		return nil
	}
	t := tp.EventTopic()

	b.mu.RLock()
	var matched []subscriber
	for _, s := range b.subscribers {
		if t.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.eventsPublished.Add(1)

	var errs []error
	for _, s := range matched {
		if err := b.deliver(ctx, s, t, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s subscriber, t Topic, event any) (err error) {
	b.handlersExecuted.Add(1)
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{SubscriptionID: s.id, Topic: t, Value: r}
			b.logger.Warn("event handler panicked",
				zap.String("topic", t.String()),
				zap.String("subscription", s.id),
				zap.Any("panic", r))
		}
	}()

	if err = s.handler(ctx, event); err != nil {
		b.handlerErrors.Add(1)
		b.logger.Debug("event handler failed",
			zap.String("topic", t.String()),
			zap.Error(err))
	}
	return err
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subscribers)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:  b.eventsPublished.Load(),
		HandlersExecuted: b.handlersExecuted.Load(),
		HandlerErrors:    b.handlerErrors.Load(),
		HandlerPanics:    b.handlerPanics.Load(),
		Subscribers:      n,
	}
}

// Subscribe registers a typed handler. Events on matching topics whose
// payload is not a T are ignored.
func Subscribe[T any](b *Bus, pattern Topic, fn func(Event[T])) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	return b.Subscribe(pattern, func(_ context.Context, e any) error {
		if ev, ok := e.(Event[T]); ok {
			fn(ev)
		}
		return nil
	})
}
