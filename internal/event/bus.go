package event

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/event/topic"
)

// Bus is the event bus interface.
type Bus interface {
	// Publish delivers an event synchronously to every matching subscription.
	// Handler failures are reported to the error handler, never returned.
	Publish(ctx context.Context, event any) error

	// Subscribe creates a new subscription for the given topic pattern.
	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc is a convenience method for subscribing with a function handler.
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(sub Subscription) error

	// Stats returns current bus statistics.
	Stats() Stats
}

type bus struct {
	registry *registry
	config   busConfig

	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &bus{
		registry: newRegistry(),
		config:   cfg,
	}
}

func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()
	if !eventTopic.IsValid() || eventTopic.IsWildcard() {
		return ErrInvalidTopic
	}

	b.eventsPublished.Add(1)

	// Match returns a snapshot, so handlers may subscribe or unsubscribe freely.
	for _, sub := range b.registry.match(eventTopic) {
		if !sub.shouldDeliver(event) {
			continue
		}
		err := b.deliver(ctx, sub, eventTopic, event)
		if err == nil && sub.config.Once {
			sub.Cancel()
			b.registry.remove(sub.id)
		}
	}
	return nil
}

func (b *bus) deliver(ctx context.Context, sub *subscription, t topic.Topic, event any) (err error) {
	b.handlersExecuted.Add(1)

	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{SubscriptionID: sub.id, Topic: t.String(), Value: r}
			b.report(event, err)
		}
	}()

	if err = sub.handler.Handle(ctx, event); err != nil {
		b.handlerErrors.Add(1)
		b.report(event, err)
	}
	return err
}

func (b *bus) report(event any, err error) {
	b.config.logger.Warn("event handler failed", zap.Error(err))
	if b.config.errorHandler != nil {
		b.config.errorHandler(event, err)
	}
}

func (b *bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), pattern, handler, b.registry.nextSeq(), opts...)
	b.registry.add(sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	if !b.registry.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.countActive(),
	}
}
