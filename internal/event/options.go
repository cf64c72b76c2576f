package event

import "go.uber.org/zap"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

type busConfig struct {
	logger       *zap.Logger
	errorHandler ErrorHandler
}

func defaultBusConfig() busConfig {
	return busConfig{logger: zap.NewNop()}
}

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *zap.Logger) BusOption {
	return func(c *busConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithErrorHandler sets a callback invoked for every handler error or panic.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}
