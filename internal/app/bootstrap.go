package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/config"
	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/logging"
	"github.com/dshills/docshell/internal/loop"
	"github.com/dshills/docshell/internal/metrics"
	"github.com/dshills/docshell/internal/session"
	"github.com/dshills/docshell/internal/shell"
	"github.com/dshills/docshell/internal/watcher"
)

// Component names, in initialization order.
const (
	componentConfig   = "config"
	componentLogger   = "logger"
	componentMetrics  = "metrics"
	componentBus      = "eventBus"
	componentLoop     = "loop"
	componentFactory  = "factory"
	componentSession  = "session"
	componentWatcher  = "watcher"
	componentRoutes   = "subscriptions"
	componentDocument = "documents"
)

var allComponents = []string{
	componentConfig,
	componentLogger,
	componentMetrics,
	componentBus,
	componentLoop,
	componentFactory,
	componentSession,
	componentWatcher,
	componentRoutes,
	componentDocument,
}

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, len(allComponents))}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{componentConfig, b.initConfig},
		{componentLogger, b.initLogger},
		{componentMetrics, b.initMetrics},
		{componentBus, b.initEventBus},
		{componentLoop, b.initLoop},
		{componentFactory, b.initFactory},
		{componentSession, b.initSession},
		{componentWatcher, b.initWatcher},
		{componentRoutes, b.initSubscriptions},
		{componentDocument, b.initDocuments},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			var ie *InitError
			if errors.As(err, &ie) {
				return err
			}
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.app.fs, b.app.opts.ConfigPath)
	if err != nil {
		return err
	}
	if b.app.opts.LogLevel != "" {
		cfg.Logging.Level = b.app.opts.LogLevel
	}
	if b.app.opts.Debug {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if b.app.opts.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = b.app.opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.app.cfg = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	if b.app.opts.Logger != nil {
		b.app.log = b.app.opts.Logger
		return nil
	}
	log, err := logging.New(logging.Config{
		Level:       b.app.cfg.Logging.Level,
		Development: b.app.cfg.Logging.Development,
		OutputPaths: b.app.cfg.Logging.OutputPaths,
	})
	if err != nil {
		return err
	}
	b.app.log = log
	return nil
}

func (b *bootstrapper) initMetrics() error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	b.app.registry = reg
	b.app.metrics = metrics.New(reg)
	return nil
}

func (b *bootstrapper) initEventBus() error {
	log := logging.Component(b.app.log, "event")
	b.app.bus = event.NewBus(event.WithLogger(log))
	return metrics.RegisterBus(b.app.registry, b.app.bus.Stats)
}

func (b *bootstrapper) initLoop() error {
	b.app.loop = loop.New(b.app.cfg.Session.QueueSize)
	return nil
}

func (b *bootstrapper) initFactory() error {
	f, err := BuildFactory(b.app.cfg.Backends, b.app.fs)
	if err != nil {
		return err
	}
	b.app.factory = f
	return nil
}

func (b *bootstrapper) initSession() error {
	app := b.app
	app.stack = shell.NewStack()
	app.combo = shell.NewCombo()
	app.icons = shell.NewIcons(app.fs)

	confirm := app.opts.Confirm
	if confirm == nil {
		choice := app.cfg.Session.ConfirmChoice()
		confirm = func(string) editor.CloseChoice { return choice }
	}

	app.manager = session.New(app.factory, app.fs, app.stack, app.loop,
		session.WithLogger(app.log),
		session.WithBus(app.bus),
		session.WithMetrics(app.metrics),
		session.WithIcons(app.icons),
		session.WithSelector(app.combo),
		session.WithConfirmClose(confirm),
		session.WithMaxFileSize(app.cfg.Session.MaxFileSize),
	)
	return nil
}

func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !app.cfg.Session.Watch {
		return nil
	}
	w, err := watcher.New(app.externalChange,
		watcher.WithDelay(time.Duration(app.cfg.Session.WatchDelayMS)*time.Millisecond),
		watcher.WithLogger(app.log),
	)
	if err != nil {
		// Watching is optional; run without it.
		app.log.Warn("file watching disabled", zap.Error(err))
		return nil
	}
	app.watcher = w
	return nil
}

func (b *bootstrapper) initSubscriptions() error {
	return b.app.subscribe()
}

func (b *bootstrapper) initDocuments() error {
	b.app.OpenFiles(b.app.opts.Files, b.app.opts.ReadOnly)
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupAll releases every component that exists.
func (b *bootstrapper) cleanupAll() {
	b.initOrder = append(b.initOrder[:0], allComponents...)
	b.cleanup()
}

func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case componentRoutes:
		app.unsubscribe()
	case componentWatcher:
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.log.Debug("closing watcher", zap.Error(err))
			}
		}
	case componentSession:
		if app.manager != nil {
			app.manager.Close()
		}
	case componentLoop:
		if app.loop != nil {
			app.loop.Close()
		}
	case componentMetrics:
		if app.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = app.metricsServer.Shutdown(ctx)
			app.metricsServer = nil
		}
	case componentLogger:
		if app.log != nil {
			_ = app.log.Sync()
		}
	}
}

func fmtStatus(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
