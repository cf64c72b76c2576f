package events

import (
	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/event/topic"
)

// Document event topics.
const (
	// TopicDocumentFocused is published when a document becomes the visible one.
	TopicDocumentFocused topic.Topic = "document.focused"

	// TopicDocumentClosed is published after a document is removed from the session.
	TopicDocumentClosed topic.Topic = "document.closed"

	// TopicDocumentNotFound is published when a path cannot be opened,
	// either because no backend recognizes it or because loading failed.
	TopicDocumentNotFound topic.Topic = "document.notfound"

	// TopicDocumentModified is published on every modified-state transition.
	TopicDocumentModified topic.Topic = "document.modified"

	// TopicDocumentSaved is published after a successful save.
	TopicDocumentSaved topic.Topic = "document.saved"

	// TopicDocumentReloaded is published after content is refreshed from disk.
	TopicDocumentReloaded topic.Topic = "document.reloaded"

	// TopicDocumentChanged is published when an open document with unsaved
	// changes was modified or removed on disk.
	TopicDocumentChanged topic.Topic = "document.changed"

	// TopicDocumentAll matches every document topic.
	TopicDocumentAll topic.Topic = "document.*"
)

// DocumentFocused is published when a document becomes the visible one.
type DocumentFocused struct {
	// Path is the document identity.
	Path string
}

// DocumentClosed is published after a document is removed from the session.
type DocumentClosed struct {
	Path string
}

// NotFoundReason explains why a document could not be opened.
type NotFoundReason string

// Not-found reasons.
const (
	ReasonUnsupported NotFoundReason = "unsupported"
	ReasonLoadFailed  NotFoundReason = "load-failed"
)

// DocumentNotFound is published when a path cannot be opened.
type DocumentNotFound struct {
	Path   string
	Reason NotFoundReason

	// Err is the load error; nil for unsupported types.
	Err error
}

// DocumentModified is published on every modified-state transition.
type DocumentModified struct {
	Path     string
	Editor   editor.Editor
	Modified bool
}

// DocumentSaved is published after a successful save.
type DocumentSaved struct {
	Path string
}

// DocumentReloaded is published after content is refreshed from disk.
type DocumentReloaded struct {
	Path string
}

// DocumentChanged is published when an open document with unsaved changes
// was changed or removed on disk.
type DocumentChanged struct {
	Path    string
	Removed bool
}
