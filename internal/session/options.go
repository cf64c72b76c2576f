package session

import (
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/metrics"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The manager logs under the "session" name.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.log = logger
		}
	}
}

// WithBus sets the bus lifecycle events are published on.
func WithBus(bus event.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithIcons sets the icon resolver used for selector entries.
func WithIcons(icons IconResolver) Option {
	return func(m *Manager) { m.icons = icons }
}

// WithSelector attaches a selector at construction.
func WithSelector(sel Selector) Option {
	return func(m *Manager) { m.initialSelector = sel }
}

// WithConfirmClose sets the prompt editors use before closing a document
// with unsaved changes. Without it the close is cancelled.
func WithConfirmClose(fn func(path string) editor.CloseChoice) Option {
	return func(m *Manager) { m.confirm = fn }
}

// WithMaxFileSize limits the size of files backends will load.
func WithMaxFileSize(n int64) Option {
	return func(m *Manager) { m.maxFileSize = n }
}

// WithoutFallback skips registering the plain text fallback backend.
func WithoutFallback() Option {
	return func(m *Manager) { m.noFallback = true }
}
