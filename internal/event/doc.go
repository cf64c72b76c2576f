// Package event provides the synchronous publish/subscribe bus that carries
// document lifecycle notifications from the session manager to its
// collaborators: the file watcher, the status line and the debug log.
//
// Delivery is synchronous and runs on the publisher's goroutine, which for
// the session manager is the UI goroutine. Handlers are ordered by priority,
// may filter events, may be one-shot, and are isolated from each other: a
// panicking or failing handler never prevents delivery to the rest.
//
// Typed events are built with NewEvent and subscribed to with topic patterns:
//
//	bus := event.NewBus()
//	bus.SubscribeFunc("document.*", func(ctx context.Context, ev any) error {
//		return nil
//	})
//	bus.Publish(ctx, event.NewEvent(events.TopicDocumentClosed, payload, "session"))
package event
