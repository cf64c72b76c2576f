package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/event/events"
	"github.com/dshills/docshell/internal/event/topic"
	"github.com/dshills/docshell/internal/watcher"
)

// subscribe routes session events to the watcher and the status line.
func (app *Application) subscribe() error {
	routes := []struct {
		pattern  topic.Topic
		handler  event.Handler
		priority event.Priority
	}{
		{events.TopicDocumentFocused, event.AsHandler(app.onFocused), event.PriorityHigh},
		{events.TopicDocumentClosed, event.AsHandler(app.onClosed), event.PriorityHigh},
		{events.TopicDocumentNotFound, event.AsHandler(app.onNotFound), event.PriorityNormal},
		{events.TopicDocumentChanged, event.AsHandler(app.onChanged), event.PriorityNormal},
		{events.TopicDocumentSaved, event.AsHandler(app.onSaved), event.PriorityNormal},
		{events.TopicDocumentAll, event.HandlerFunc(app.trace), event.PriorityLow},
	}

	for _, r := range routes {
		sub, err := app.bus.Subscribe(r.pattern, r.handler, event.WithPriority(r.priority))
		if err != nil {
			app.unsubscribe()
			return err
		}
		app.subs = append(app.subs, sub)
	}
	return nil
}

func (app *Application) unsubscribe() {
	for _, sub := range app.subs {
		_ = app.bus.Unsubscribe(sub)
	}
	app.subs = nil
}

func (app *Application) onFocused(_ context.Context, e event.Event[events.DocumentFocused]) error {
	if app.watcher == nil {
		return nil
	}
	return app.watcher.Track(e.Payload.Path)
}

func (app *Application) onClosed(_ context.Context, e event.Event[events.DocumentClosed]) error {
	if app.watcher == nil {
		return nil
	}
	return app.watcher.Untrack(e.Payload.Path)
}

func (app *Application) onNotFound(_ context.Context, e event.Event[events.DocumentNotFound]) error {
	switch e.Payload.Reason {
	case events.ReasonUnsupported:
		app.setStatus("%s: unsupported file type", e.Payload.Path)
	default:
		app.setStatus("%s: %v", e.Payload.Path, e.Payload.Err)
	}
	return nil
}

func (app *Application) onChanged(_ context.Context, e event.Event[events.DocumentChanged]) error {
	if e.Payload.Removed {
		app.setStatus("%s was removed on disk", e.Payload.Path)
	} else {
		app.setStatus("%s changed on disk, Ctrl-R to reload", e.Payload.Path)
	}
	return nil
}

func (app *Application) onSaved(_ context.Context, e event.Event[events.DocumentSaved]) error {
	app.setStatus("saved %s", e.Payload.Path)
	return nil
}

func (app *Application) trace(_ context.Context, ev any) error {
	if tp, ok := ev.(event.TopicProvider); ok {
		app.log.Debug("session event", zap.String("topic", tp.EventTopic().String()))
	}
	return nil
}

// externalChange is the watcher handler. It runs on a timer goroutine,
// so the change is posted to the UI loop.
func (app *Application) externalChange(c watcher.Change) {
	err := app.loop.Post(func() {
		app.manager.HandleExternalChange(c.Path, c.Removed)
		app.redraw()
	})
	if err != nil {
		app.log.Debug("dropped external change", zap.String("path", c.Path), zap.Error(err))
	}
}
