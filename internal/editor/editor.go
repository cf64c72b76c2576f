package editor

import (
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/vfs"
)

// Position is a zero-based cursor location.
type Position struct {
	Line   int
	Column int
}

// ModifyObserver is notified on every modified-state transition.
type ModifyObserver func(ed Editor, modified bool)

// Editor is the capability set a document backend exposes to the session.
type Editor interface {
	// Load reads the document at path. On failure the editor must be left
	// without a path and is discarded by the caller.
	Load(path string) error

	// Save writes the document to path and clears the modified flag.
	Save(path string) error

	// Path returns the path set by the last successful Load or Save.
	Path() string

	IsModified() bool
	SetModified(modified bool)

	IsReadOnly() bool
	SetReadOnly(readOnly bool)

	Cursor() Position
	SetCursor(pos Position)

	// OnModify registers an observer. Observers cannot be removed; they
	// live as long as the editor.
	OnModify(obs ModifyObserver)

	// Surface returns the display handle for this editor.
	Surface() Surface

	// RequestClose asks the editor whether it may be closed. An editor
	// with unsaved changes typically asks the user first. It returns
	// false when the close is rejected.
	RequestClose() bool
}

// Reloader is implemented by editors that can refresh from disk.
type Reloader interface {
	// Reload re-reads the current path and reports whether content changed.
	Reload() (bool, error)
}

// Texter is implemented by editors that expose their content as text.
type Texter interface {
	Text() string
}

// CloseChoice is the user's answer to a save-before-close prompt.
type CloseChoice int

const (
	// CloseCancel keeps the document open.
	CloseCancel CloseChoice = iota
	// CloseSave saves and closes.
	CloseSave
	// CloseDiscard drops unsaved changes and closes.
	CloseDiscard
)

// String returns the choice name.
func (c CloseChoice) String() string {
	switch c {
	case CloseSave:
		return "save"
	case CloseDiscard:
		return "discard"
	default:
		return "cancel"
	}
}

// ParseCloseChoice converts a config value to a CloseChoice.
// Unknown values map to CloseCancel.
func ParseCloseChoice(s string) CloseChoice {
	switch s {
	case "save":
		return CloseSave
	case "discard":
		return CloseDiscard
	default:
		return CloseCancel
	}
}

// Host is the environment a backend constructor receives.
type Host interface {
	FS() vfs.VFS
	Logger() *zap.Logger

	// ConfirmClose asks what to do with unsaved changes in path.
	ConfirmClose(path string) CloseChoice

	// MaxFileSize is the largest file a backend should load. Zero means
	// no limit.
	MaxFileSize() int64
}

// Constructor creates an unloaded editor.
type Constructor func(host Host) Editor

// StaticHost is a Host built from fixed values.
type StaticHost struct {
	Files   vfs.VFS
	Log     *zap.Logger
	MaxSize int64

	// Confirm answers close prompts. Nil always cancels.
	Confirm func(path string) CloseChoice
}

// FS implements Host.
func (h *StaticHost) FS() vfs.VFS { return h.Files }

// Logger implements Host.
func (h *StaticHost) Logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// ConfirmClose implements Host.
func (h *StaticHost) ConfirmClose(path string) CloseChoice {
	if h.Confirm == nil {
		return CloseCancel
	}
	return h.Confirm(path)
}

// MaxFileSize implements Host.
func (h *StaticHost) MaxFileSize() int64 { return h.MaxSize }
