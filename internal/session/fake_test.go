package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/event"
	"github.com/dshills/docshell/internal/event/events"
	"github.com/dshills/docshell/internal/event/topic"
	"github.com/dshills/docshell/internal/loop"
	"github.com/dshills/docshell/internal/session"
	"github.com/dshills/docshell/internal/shell"
	"github.com/dshills/docshell/internal/vfs"
)

// fakeEditor is a scripted backend.
type fakeEditor struct {
	*editor.BaseSurface

	path      string
	modified  bool
	readOnly  bool
	cursor    editor.Position
	observers []editor.ModifyObserver

	loadErr          error
	saveErr          error
	reloadErr        error
	reloadChanged    bool
	rejectClose      bool
	residualModified bool
	onLoad           func()
	onRequestClose   func()

	loads, saves, closeRequests, reloads int

	backend *fakeBackend
}

func (e *fakeEditor) Load(path string) error {
	e.loads++
	if fn := e.backend.script[path]; fn != nil {
		fn(e)
	}
	if e.onLoad != nil {
		e.onLoad()
	}
	if e.loadErr != nil {
		return e.loadErr
	}
	e.path = path
	e.backend.byPath[path] = e
	if e.residualModified {
		e.SetModified(true)
	}
	return nil
}

func (e *fakeEditor) Save(path string) error {
	e.saves++
	if e.saveErr != nil {
		return e.saveErr
	}
	e.path = path
	e.SetModified(false)
	return nil
}

func (e *fakeEditor) Reload() (bool, error) {
	e.reloads++
	if e.reloadErr != nil {
		return false, e.reloadErr
	}
	return e.reloadChanged, nil
}

func (e *fakeEditor) Path() string     { return e.path }
func (e *fakeEditor) IsModified() bool { return e.modified }

func (e *fakeEditor) SetModified(m bool) {
	if e.modified == m {
		return
	}
	e.modified = m
	for _, obs := range e.observers {
		obs(e, m)
	}
}

func (e *fakeEditor) IsReadOnly() bool                 { return e.readOnly }
func (e *fakeEditor) SetReadOnly(r bool)               { e.readOnly = r }
func (e *fakeEditor) Cursor() editor.Position          { return e.cursor }
func (e *fakeEditor) SetCursor(p editor.Position)      { e.cursor = p }
func (e *fakeEditor) OnModify(o editor.ModifyObserver) { e.observers = append(e.observers, o) }
func (e *fakeEditor) Surface() editor.Surface          { return e.BaseSurface }

func (e *fakeEditor) RequestClose() bool {
	e.closeRequests++
	if e.onRequestClose != nil {
		e.onRequestClose()
	}
	return !e.rejectClose
}

// fakeBackend constructs fakeEditors and applies per-path scripts on load.
type fakeBackend struct {
	created int
	all     []*fakeEditor
	byPath  map[string]*fakeEditor
	script  map[string]func(*fakeEditor)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		byPath: make(map[string]*fakeEditor),
		script: make(map[string]func(*fakeEditor)),
	}
}

func (b *fakeBackend) constructor(editor.Host) editor.Editor {
	b.created++
	ed := &fakeEditor{BaseSurface: editor.NewBaseSurface(), backend: b}
	b.all = append(b.all, ed)
	return ed
}

type recorded struct {
	topic topic.Topic
	path  string
	data  any
}

// recorder captures every document event published on the bus.
type recorder struct {
	mu     sync.Mutex
	events []recorded
}

func (r *recorder) handle(_ context.Context, ev any) error {
	var rec recorded
	switch e := ev.(type) {
	case event.Event[events.DocumentFocused]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentClosed]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentNotFound]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentModified]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentSaved]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentReloaded]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	case event.Event[events.DocumentChanged]:
		rec = recorded{e.Type, e.Payload.Path, e.Payload}
	default:
		return nil
	}
	r.mu.Lock()
	r.events = append(r.events, rec)
	r.mu.Unlock()
	return nil
}

func (r *recorder) paths(t topic.Topic) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.topic == t {
			out = append(out, e.path)
		}
	}
	return out
}

func (r *recorder) of(t topic.Topic) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, e := range r.events {
		if e.topic == t {
			out = append(out, e.data)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type harness struct {
	fs      *vfs.MemFS
	factory *editor.Factory
	backend *fakeBackend
	stack   *shell.Stack
	combo   *shell.Combo
	loop    *loop.Loop
	rec     *recorder
	mgr     *session.Manager
}

type harnessConfig struct {
	recognizer func(fs vfs.VFS) editor.Recognizer
	noSelector bool
	opts       []session.Option
}

type harnessOption func(*harnessConfig)

func withRecognizer(fn func(fs vfs.VFS) editor.Recognizer) harnessOption {
	return func(c *harnessConfig) { c.recognizer = fn }
}

func withoutSelector() harnessOption {
	return func(c *harnessConfig) { c.noSelector = true }
}

func withOptions(opts ...session.Option) harnessOption {
	return func(c *harnessConfig) { c.opts = append(c.opts, opts...) }
}

func newHarness(t *testing.T, files []string, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{recognizer: editor.RegularFileRecognizer}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		fs:      vfs.NewMemFS(),
		factory: editor.NewFactory(),
		backend: newFakeBackend(),
		stack:   shell.NewStack(),
		combo:   shell.NewCombo(),
		loop:    loop.New(0),
		rec:     &recorder{},
	}
	for _, f := range files {
		require.NoError(t, h.fs.AddFile(f, "content of "+f))
	}
	h.factory.Register(cfg.recognizer(h.fs), h.backend.constructor)

	bus := event.NewBus(event.WithLogger(zaptest.NewLogger(t)))
	_, err := bus.SubscribeFunc(events.TopicDocumentAll, h.rec.handle)
	require.NoError(t, err)

	sopts := []session.Option{
		session.WithLogger(zaptest.NewLogger(t)),
		session.WithBus(bus),
		session.WithIcons(session.IconFunc(func(string) session.Icon { return "file" })),
	}
	if !cfg.noSelector {
		sopts = append(sopts, session.WithSelector(h.combo))
	}
	sopts = append(sopts, cfg.opts...)

	h.mgr = session.New(h.factory, h.fs, h.stack, h.loop, sopts...)
	t.Cleanup(h.mgr.Close)
	return h
}

func (h *harness) editor(t *testing.T, path string) *fakeEditor {
	t.Helper()
	ed, ok := h.mgr.EditorFor(path)
	require.True(t, ok, "%s not open", path)
	return ed.(*fakeEditor)
}

func (h *harness) open(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, h.mgr.OpenDocument(p))
	}
}

// faultyDisplay panics from SetCurrent once armed.
type faultyDisplay struct {
	*shell.Stack
	armed bool
}

func (d *faultyDisplay) SetCurrent(s editor.Surface) {
	d.Stack.SetCurrent(s)
	if d.armed {
		d.armed = false
		panic("display failure")
	}
}
