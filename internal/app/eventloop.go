package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/shell"
)

// Run initializes screen and processes input until the user quits or
// ctx is cancelled. A user quit is reported as ErrQuit.
func (app *Application) Run(ctx context.Context, screen tcell.Screen) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer screen.Fini()

	app.view = shell.NewView(screen, app.manager, app.combo, app.log)
	if app.pendingStatus != "" {
		app.view.SetStatus("%s", app.pendingStatus)
		app.pendingStatus = ""
	}

	if err := app.startMetricsServer(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go app.pollInput(ctx, screen, cancel)
	app.redraw()

	err := app.loop.Run(ctx)
	if errors.Is(context.Cause(ctx), ErrQuit) {
		return ErrQuit
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pollInput forwards terminal events to the UI loop. PollEvent returns
// nil once the screen is finalized, which ends the goroutine.
func (app *Application) pollInput(ctx context.Context, screen tcell.Screen, quit context.CancelCauseFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := app.loop.Post(func() {
			if app.handleEvent(screen, ev) {
				quit(ErrQuit)
				return
			}
			app.redraw()
		})
		if err != nil {
			return
		}
	}
}

// handleEvent applies one terminal event and reports whether to quit.
func (app *Application) handleEvent(screen tcell.Screen, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return app.view.HandleKey(ev)
	case *tcell.EventResize:
		screen.Sync()
	}
	return false
}

func (app *Application) redraw() {
	if app.view != nil {
		app.view.Draw()
	}
}

// MetricsHandler serves the application registry in the Prometheus
// exposition format.
func (app *Application) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
}

func (app *Application) startMetricsServer() error {
	if !app.cfg.Metrics.Enabled || app.metricsServer != nil {
		return nil
	}
	ln, err := net.Listen("tcp", app.cfg.Metrics.Addr)
	if err != nil {
		return &InitError{Component: "metrics endpoint", Err: err}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.MetricsHandler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	app.metricsServer = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Warn("metrics endpoint stopped", zap.Error(err))
		}
	}()
	app.log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return nil
}
