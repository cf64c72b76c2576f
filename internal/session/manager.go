// Package session tracks the open documents of the shell.
//
// The Manager owns every open editor, keyed by absolute path, and keeps
// the display and an optional selector control in step with it. All
// methods must be called from the UI goroutine; nothing here is locked.
// Re-entrant calls for a document that is in the middle of opening or
// closing are refused with ErrReentrant rather than nested.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/editor/plaintext"
	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/event/events"
	"github.com/dshills/docshell/internal/event/topic"
	"github.com/dshills/docshell/internal/metrics"
	"github.com/dshills/docshell/internal/vfs"
)

// eventSource tags events published by the manager.
const eventSource = "session"

// Manager is the document session orchestrator.
type Manager struct {
	factory  *editor.Factory
	fs       vfs.VFS
	display  Display
	deferrer Deferrer
	host     *editor.StaticHost

	bus     event.Bus
	metrics *metrics.Metrics
	icons   IconResolver
	log     *zap.Logger

	confirm         func(path string) editor.CloseChoice
	maxFileSize     int64
	noFallback      bool
	initialSelector Selector

	registry      *registry
	sync          *synchronizer
	focusing      bool
	cancelDisplay func()
}

// New creates a manager. Unless WithoutFallback is given, the plain text
// backend is registered as the factory's fallback if it has none.
func New(factory *editor.Factory, fsys vfs.VFS, display Display, deferrer Deferrer, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		fs:       fsys,
		display:  display,
		deferrer: deferrer,
		log:      zap.NewNop(),
		registry: newRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("session")

	m.host = &editor.StaticHost{
		Files:   fsys,
		Log:     m.log.Named("editor"),
		MaxSize: m.maxFileSize,
		Confirm: m.confirm,
	}

	if !m.noFallback && !factory.HasFallback() {
		factory.RegisterFallback(editor.RegularFileRecognizer(fsys), plaintext.Constructor())
	}

	m.sync = newSynchronizer(m.icons, func(id string) {
		if err := m.OpenDocument(id); err != nil {
			m.log.Warn("open from selector failed", zap.String("path", id), zap.Error(err))
		}
	})
	m.sync.attach(m.initialSelector)
	m.initialSelector = nil

	m.cancelDisplay = display.OnCurrentChanged(m.currentChanged)
	return m
}

// Close detaches the manager from its display and selector.
// Open documents are left untouched.
func (m *Manager) Close() {
	if m.cancelDisplay != nil {
		m.cancelDisplay()
		m.cancelDisplay = nil
	}
	m.sync.detach()
}

// AttachSelector replaces the selector control, detaching the previous
// one. The current document, if any, is materialized in the new selector.
func (m *Manager) AttachSelector(sel Selector) {
	m.sync.attach(sel)
	if cur := m.CurrentDocument(); cur != "" {
		m.sync.focus(cur, m.isModified(cur))
	}
}

func (m *Manager) identity(path string) (string, error) {
	if path == "" {
		return "", ErrNotOpen
	}
	return m.fs.Abs(path)
}

// OpenDocument opens path, or focuses it when already open.
// Directories are ignored.
func (m *Manager) OpenDocument(path string) error {
	id, err := m.identity(path)
	if err != nil {
		return newOpError("open", path, err)
	}
	if m.fs.IsDir(id) {
		return nil
	}

	if e, ok := m.registry.get(id); ok {
		if e.state == stateClosing {
			return newOpError("open", id, ErrReentrant)
		}
		m.metrics.RecordOpen(metrics.ResultFocused)
		m.Focus(id)
		return nil
	}
	if m.registry.isOpening(id) {
		return newOpError("open", id, ErrReentrant)
	}

	ed, ok := m.factory.Create(id, m.host)
	if !ok {
		m.log.Info("unsupported file type", zap.String("path", id))
		m.metrics.RecordOpen(metrics.ResultUnsupported)
		publish(m, events.TopicDocumentNotFound, events.DocumentNotFound{
			Path:   id,
			Reason: events.ReasonUnsupported,
		})
		return newOpError("open", id, ErrUnsupportedType)
	}

	m.registry.beginOpen(id)
	start := time.Now()
	err = ed.Load(id)
	m.metrics.RecordLoad(time.Since(start))
	m.registry.endOpen(id)

	if err != nil {
		m.log.Warn("load failed", zap.String("path", id), zap.Error(err))
		m.disposeLater(ed.Surface())
		m.metrics.RecordOpen(metrics.ResultFailed)
		publish(m, events.TopicDocumentNotFound, events.DocumentNotFound{
			Path:   id,
			Reason: events.ReasonLoadFailed,
			Err:    err,
		})
		return newOpError("open", id, fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}

	ed.SetModified(false)
	m.registry.insert(id, ed)
	m.display.AddSurface(ed.Surface())
	ed.OnModify(m.observe(id))

	m.metrics.RecordOpen(metrics.ResultOK)
	m.metrics.SetOpen(m.registry.len())
	m.log.Debug("opened", zap.String("path", id))

	m.Focus(id)
	return nil
}

// OpenDocumentAt opens path and moves its cursor to pos.
func (m *Manager) OpenDocumentAt(path string, pos editor.Position) error {
	if err := m.OpenDocument(path); err != nil {
		return err
	}
	if ed, ok := m.EditorFor(path); ok {
		ed.SetCursor(pos)
	}
	return nil
}

// observe returns the modification observer for id. Editors outlive their
// registry entry until disposal, so stale callbacks are dropped.
func (m *Manager) observe(id string) editor.ModifyObserver {
	return func(ed editor.Editor, modified bool) {
		e, ok := m.registry.get(id)
		if !ok || e.ed != ed {
			return
		}
		m.sync.refresh(id, modified)
		publish(m, events.TopicDocumentModified, events.DocumentModified{
			Path:     id,
			Editor:   ed,
			Modified: modified,
		})
	}
}

// Focus makes the surface of path the visible one.
func (m *Manager) Focus(path string) {
	id, err := m.identity(path)
	if err != nil {
		return
	}
	e, ok := m.registry.get(id)
	if !ok {
		return
	}

	m.quiet(func() { m.display.SetCurrent(e.ed.Surface()) })
	m.focused(id, e.ed)
}

// quiet runs fn with display change notifications suppressed.
func (m *Manager) quiet(fn func()) {
	prev := m.focusing
	m.focusing = true
	defer func() { m.focusing = prev }()
	fn()
}

func (m *Manager) focused(id string, ed editor.Editor) {
	m.sync.focus(id, ed.IsModified())
	publish(m, events.TopicDocumentFocused, events.DocumentFocused{Path: id})
}

// currentChanged follows display changes the manager did not initiate,
// such as the display picking a neighbor after a removal.
func (m *Manager) currentChanged(s editor.Surface) {
	if m.focusing {
		return
	}
	id, ok := m.registry.pathFor(s)
	if !ok {
		return
	}
	if e, ok := m.registry.get(id); ok {
		m.focused(id, e.ed)
	}
}

// FocusNext focuses the document after the current one in path order.
func (m *Manager) FocusNext() { m.cycle(1) }

// FocusPrevious focuses the document before the current one in path order.
func (m *Manager) FocusPrevious() { m.cycle(-1) }

func (m *Manager) cycle(step int) {
	paths := m.registry.paths()
	if len(paths) == 0 {
		return
	}
	cur := m.CurrentDocument()
	idx := -1
	for i, p := range paths {
		if p == cur {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.Focus(paths[0])
		return
	}
	m.Focus(paths[(idx+step+len(paths))%len(paths)])
}

// CloseDocument asks the editor of path to close and removes it from the
// session when it accepts. A rejected close changes nothing and reports
// false with a nil error.
func (m *Manager) CloseDocument(path string) (bool, error) {
	id, err := m.identity(path)
	if err != nil {
		return false, newOpError("close", path, err)
	}
	e, ok := m.registry.get(id)
	if !ok {
		if m.registry.isOpening(id) {
			return false, newOpError("close", id, ErrReentrant)
		}
		return false, newOpError("close", id, ErrNotOpen)
	}
	if e.state == stateClosing {
		return false, newOpError("close", id, ErrReentrant)
	}

	e.state = stateClosing
	accepted := e.ed.RequestClose()
	if !accepted {
		e.state = stateOpen
		m.metrics.RecordClose(metrics.ResultRejected)
		m.log.Debug("close rejected", zap.String("path", id))
		return false, nil
	}

	surface := e.ed.Surface()
	m.display.RemoveSurface(surface)
	m.sync.remove(id)
	m.disposeLater(surface)
	m.registry.remove(id)

	m.metrics.RecordClose(metrics.ResultOK)
	m.metrics.SetOpen(m.registry.len())
	m.log.Debug("closed", zap.String("path", id))

	publish(m, events.TopicDocumentClosed, events.DocumentClosed{Path: id})
	return true, nil
}

// CloseCurrent closes the visible document.
func (m *Manager) CloseCurrent() (bool, error) {
	cur := m.CurrentDocument()
	if cur == "" {
		return false, nil
	}
	return m.CloseDocument(cur)
}

// CloseAll attempts to close every open document and reports whether all
// of them closed. A rejection does not stop the remaining attempts.
func (m *Manager) CloseAll() bool {
	all := true
	for _, id := range m.registry.paths() {
		closed, err := m.CloseDocument(id)
		switch {
		case errors.Is(err, ErrNotOpen):
		case err != nil || !closed:
			all = false
		}
	}
	return all
}

// SaveDocument saves path to its own location.
func (m *Manager) SaveDocument(path string) error {
	id, err := m.identity(path)
	if err != nil {
		return newOpError("save", path, err)
	}
	e, ok := m.registry.get(id)
	if !ok {
		return newOpError("save", id, ErrNotOpen)
	}

	if err := e.ed.Save(id); err != nil {
		m.metrics.RecordSave(metrics.ResultFailed)
		m.log.Warn("save failed", zap.String("path", id), zap.Error(err))
		return newOpError("save", id, fmt.Errorf("%w: %w", ErrSaveFailed, err))
	}

	m.metrics.RecordSave(metrics.ResultOK)
	publish(m, events.TopicDocumentSaved, events.DocumentSaved{Path: id})
	return nil
}

// SaveCurrent saves the visible document.
func (m *Manager) SaveCurrent() error {
	cur := m.CurrentDocument()
	if cur == "" {
		return newOpError("save", "", ErrNotOpen)
	}
	return m.SaveDocument(cur)
}

// SaveAll saves every open document. Failures are collected and do not
// stop the remaining saves.
func (m *Manager) SaveAll() error {
	return m.SaveDocuments(m.registry.paths())
}

// SaveDocuments saves the given documents, best effort.
func (m *Manager) SaveDocuments(paths []string) error {
	var errs ErrorList
	for _, p := range paths {
		errs.Add(m.SaveDocument(p))
	}
	return errs.AsError()
}

// ReloadDocument refreshes path from disk. Documents with unsaved changes
// are refused with ErrUnsavedChanges.
func (m *Manager) ReloadDocument(path string) error {
	id, err := m.identity(path)
	if err != nil {
		return newOpError("reload", path, err)
	}
	e, ok := m.registry.get(id)
	if !ok {
		return newOpError("reload", id, ErrNotOpen)
	}
	if e.ed.IsModified() {
		return newOpError("reload", id, ErrUnsavedChanges)
	}
	r, ok := e.ed.(editor.Reloader)
	if !ok {
		return newOpError("reload", id, ErrNotReloadable)
	}

	changed, err := r.Reload()
	if err != nil {
		m.metrics.RecordReload(metrics.ResultFailed)
		return newOpError("reload", id, fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}
	m.metrics.RecordReload(metrics.ResultOK)
	if changed {
		publish(m, events.TopicDocumentReloaded, events.DocumentReloaded{Path: id})
	}
	return nil
}

// ReloadCurrent reloads the visible document.
func (m *Manager) ReloadCurrent() error {
	cur := m.CurrentDocument()
	if cur == "" {
		return newOpError("reload", "", ErrNotOpen)
	}
	return m.ReloadDocument(cur)
}

// HandleExternalChange reacts to path changing on disk. Unmodified
// documents are reloaded. Documents with unsaved changes, and removed
// files, are reported with a DocumentChanged event instead.
func (m *Manager) HandleExternalChange(path string, removed bool) {
	id, err := m.identity(path)
	if err != nil {
		return
	}
	e, ok := m.registry.get(id)
	if !ok {
		return
	}

	if removed || e.ed.IsModified() {
		publish(m, events.TopicDocumentChanged, events.DocumentChanged{Path: id, Removed: removed})
		return
	}
	if err := m.ReloadDocument(id); err != nil {
		m.log.Warn("reload after external change failed", zap.String("path", id), zap.Error(err))
	}
}

// UnsavedDocuments returns the sorted identities of modified documents.
func (m *Manager) UnsavedDocuments() []string {
	var out []string
	for _, p := range m.registry.paths() {
		if m.isModified(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Manager) isModified(id string) bool {
	e, ok := m.registry.get(id)
	return ok && e.ed.IsModified()
}

// Documents returns the sorted identities of all open documents.
func (m *Manager) Documents() []string {
	return m.registry.paths()
}

// DocumentCount returns the number of open documents.
func (m *Manager) DocumentCount() int {
	return m.registry.len()
}

// CurrentDocument returns the identity of the visible document, or ""
// when the visible surface is not a tracked document.
func (m *Manager) CurrentDocument() string {
	id, _ := m.registry.pathFor(m.display.Current())
	return id
}

// CurrentEditor returns the editor of the visible document.
func (m *Manager) CurrentEditor() (editor.Editor, bool) {
	cur := m.CurrentDocument()
	if cur == "" {
		return nil, false
	}
	return m.EditorFor(cur)
}

// EditorFor returns the editor of an open document.
func (m *Manager) EditorFor(path string) (editor.Editor, bool) {
	id, err := m.identity(path)
	if err != nil {
		return nil, false
	}
	e, ok := m.registry.get(id)
	if !ok {
		return nil, false
	}
	return e.ed, true
}

func (m *Manager) disposeLater(s editor.Surface) {
	m.metrics.DisposalQueued()
	m.deferrer.Defer(func() {
		s.Dispose()
		m.metrics.DisposalDone()
	})
}

func publish[T any](m *Manager, t topic.Topic, payload T) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(context.Background(), event.NewEvent(t, payload, eventSource)); err != nil {
		m.log.Error("publish failed", zap.String("topic", t.String()), zap.Error(err))
	}
}
