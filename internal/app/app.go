// Package app wires the docshell components together and runs the
// terminal front end.
package app

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/config"
	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/loop"
	"github.com/dshills/docshell/internal/metrics"
	"github.com/dshills/docshell/internal/session"
	"github.com/dshills/docshell/internal/shell"
	"github.com/dshills/docshell/internal/vfs"
	"github.com/dshills/docshell/internal/watcher"
)

// Application owns every component of a docshell process.
type Application struct {
	opts Options
	cfg  config.Config
	fs   vfs.VFS
	log  *zap.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	bus      event.Bus
	subs     []event.Subscription
	loop     *loop.Loop

	factory *editor.Factory
	stack   *shell.Stack
	combo   *shell.Combo
	icons   *shell.Icons
	manager *session.Manager
	watcher *watcher.Watcher

	view          *shell.View
	pendingStatus string
	metricsServer *http.Server

	running      atomic.Bool
	shutdownOnce sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses the defaults.
	ConfigPath string

	// Files are opened on startup, the last one focused.
	Files []string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// Debug switches the logger to development mode.
	Debug bool

	// ReadOnly opens the startup files read-only.
	ReadOnly bool

	// MetricsAddr enables the metrics endpoint on this address.
	MetricsAddr string

	// FS is the file system. Defaults to the OS file system.
	FS vfs.VFS

	// Logger replaces the configured logger.
	Logger *zap.Logger

	// Confirm answers the save-before-close prompt. Defaults to the
	// configured answer.
	Confirm func(path string) editor.CloseChoice
}

// New creates and bootstraps an application.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts, fs: opts.FS}
	if app.fs == nil {
		app.fs = vfs.NewOSFS()
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// IsRunning returns true while Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the loaded configuration.
func (app *Application) Config() config.Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger { return app.log }

// Registry returns the Prometheus registry holding the application metrics.
func (app *Application) Registry() *prometheus.Registry { return app.registry }

// EventBus returns the event bus.
func (app *Application) EventBus() event.Bus { return app.bus }

// Loop returns the UI loop.
func (app *Application) Loop() *loop.Loop { return app.loop }

// Session returns the document session.
func (app *Application) Session() *session.Manager { return app.manager }

// Combo returns the document selector.
func (app *Application) Combo() *shell.Combo { return app.combo }

// Stack returns the editor surface stack.
func (app *Application) Stack() *shell.Stack { return app.stack }

// Watcher returns the file watcher, or nil when watching is disabled.
func (app *Application) Watcher() *watcher.Watcher { return app.watcher }

// OpenFiles opens each path in order. Failures are logged and skipped;
// the number of documents opened is returned. Must run on the UI goroutine.
func (app *Application) OpenFiles(paths []string, readOnly bool) int {
	n := 0
	for _, p := range paths {
		if err := app.manager.OpenDocument(p); err != nil {
			app.log.Warn("cannot open file", zap.String("path", p), zap.Error(err))
			continue
		}
		if readOnly {
			if ed, ok := app.manager.EditorFor(p); ok {
				ed.SetReadOnly(true)
			}
		}
		n++
	}
	return n
}

// setStatus shows a message in the status line, or holds it until the
// view exists.
func (app *Application) setStatus(format string, args ...any) {
	if app.view == nil {
		app.pendingStatus = fmtStatus(format, args...)
		return
	}
	app.view.SetStatus(format, args...)
}

// Shutdown releases every component. Safe to call more than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		newBootstrapper(app).cleanupAll()
	})
}
