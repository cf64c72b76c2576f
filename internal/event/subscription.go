package event

import (
	"sync/atomic"

	"github.com/dshills/docshell/internal/event/topic"
)

// Subscription represents an active event subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() topic.Topic

	// IsActive returns true if the subscription can receive events.
	IsActive() bool

	// Pause temporarily stops event delivery to this subscription.
	Pause()

	// Resume restarts event delivery after a pause.
	Resume()

	// Cancel permanently cancels the subscription.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter is an optional predicate; events are delivered only if it returns true.
	Filter FilterFunc

	// Once cancels the subscription after its first successful delivery.
	Once bool
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce makes the subscription fire at most once.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

const (
	stateActive int32 = iota
	statePaused
	stateCancelled
)

type subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32
	seq     uint64
}

func newSubscription(id string, pattern topic.Topic, handler Handler, seq uint64, opts ...SubscriptionOption) *subscription {
	cfg := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &subscription{
		id:      id,
		pattern: pattern,
		handler: handler,
		config:  cfg,
		seq:     seq,
	}
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) IsActive() bool     { return s.state.Load() == stateActive }

func (s *subscription) Pause() {
	s.state.CompareAndSwap(stateActive, statePaused)
}

func (s *subscription) Resume() {
	s.state.CompareAndSwap(statePaused, stateActive)
}

func (s *subscription) Cancel() {
	s.state.Store(stateCancelled)
}

func (s *subscription) shouldDeliver(event any) bool {
	if !s.IsActive() {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(event)
}
