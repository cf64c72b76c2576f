package session

import "github.com/dshills/docshell/internal/editor"

// Display holds the surfaces of open documents and shows one at a time.
type Display interface {
	AddSurface(s editor.Surface)
	RemoveSurface(s editor.Surface)
	SetCurrent(s editor.Surface)

	// Current returns the visible surface, or nil.
	Current() editor.Surface

	// OnCurrentChanged registers fn for changes of the visible surface.
	// The returned func removes the registration.
	OnCurrentChanged(fn func(s editor.Surface)) (cancel func())
}

// Icon is a display glyph for a selector entry.
type Icon string

// ModifiedIcon marks documents with unsaved changes.
const ModifiedIcon Icon = "●"

// Selector is a list control of labeled, icon-decorated entries, each
// tagged with a document identity.
type Selector interface {
	Insert(label string, icon Icon, id string)
	Remove(index int)

	// Find returns the index of the entry tagged id, or -1.
	Find(id string) int

	// Sort orders entries by label.
	Sort()

	SetIcon(index int, icon Icon)
	SetCurrent(index int)
	Current() int
	Len() int

	// OnSelectionChanged registers fn for changes of the selected entry.
	// The returned func removes the registration.
	OnSelectionChanged(fn func(index int, id string)) (cancel func())
}

// IconResolver maps a path to its file-kind icon.
type IconResolver interface {
	IconFor(path string) Icon
}

// IconFunc adapts a function to IconResolver.
type IconFunc func(path string) Icon

// IconFor implements IconResolver.
func (f IconFunc) IconFor(path string) Icon { return f(path) }

// Deferrer schedules work for the end of the current event turn.
type Deferrer interface {
	Defer(fn func())
}

// DeferFunc adapts a function to Deferrer.
type DeferFunc func(fn func())

// Defer implements Deferrer.
func (f DeferFunc) Defer(fn func()) { f(fn) }
