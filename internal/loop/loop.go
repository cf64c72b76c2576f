// Package loop implements the cooperative UI event loop that serializes all
// session operations onto one goroutine.
//
// Work arrives through Post, which any goroutine may call (file watchers,
// signal handlers, terminal input readers). Work that must not run inside
// the current callback, such as disposing a widget that may still be on the
// call stack, is scheduled with Defer and runs at the end of the current turn.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Post after the loop was closed.
var ErrClosed = errors.New("loop closed")

// DefaultQueueSize is the capacity of the posted-task queue.
const DefaultQueueSize = 256

// Loop is a single-goroutine task loop with an end-of-turn deferred queue.
type Loop struct {
	tasks chan func()

	mu     sync.Mutex
	closed bool

	// deferred is only touched from the loop goroutine.
	deferred []func()
	inTurn   bool
}

// New creates a loop whose posted-task queue holds size entries.
func New(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{tasks: make(chan func(), size)}
}

// Post queues fn to run on the loop goroutine. Safe for concurrent use.
// It blocks while the queue is full.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.tasks <- fn
	return nil
}

// Defer schedules fn to run at the end of the current turn, after every
// task of the turn has returned. Outside a turn it runs at the end of the
// next one. Must be called from the loop goroutine.
func (l *Loop) Defer(fn func()) {
	l.deferred = append(l.deferred, fn)
}

// Pending returns the number of deferred functions waiting for the end of turn.
func (l *Loop) Pending() int {
	return len(l.deferred)
}

// Turn runs every task posted so far, then drains the deferred queue.
// Deferred functions scheduled while draining run in the same drain.
// It returns the number of posted tasks executed.
func (l *Loop) Turn() int {
	l.inTurn = true
	n := 0
tasks:
	for {
		select {
		case fn, ok := <-l.tasks:
			if !ok {
				break tasks
			}
			fn()
			n++
		default:
			break tasks
		}
	}
	l.drain()
	l.inTurn = false
	return n
}

// InTurn reports whether a turn is running.
func (l *Loop) InTurn() bool {
	return l.inTurn
}

func (l *Loop) drain() {
	for len(l.deferred) > 0 {
		batch := l.deferred
		l.deferred = nil
		for _, fn := range batch {
			fn()
		}
	}
}

// Run processes turns until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case fn, ok := <-l.tasks:
			if !ok {
				l.drain()
				return nil
			}
			l.inTurn = true
			fn()
			l.Turn()
		}
	}
}

// Close stops accepting posts. Run returns once the queue is empty.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.tasks)
}
