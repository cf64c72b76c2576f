// Package watcher reports on-disk changes to open documents.
//
// fsnotify is pointed at the parent directories of tracked files rather
// than the files themselves, so atomic saves (write to a temp file, then
// rename over the original) are still seen. Bursts of events for one path
// are coalesced, and whether the file still exists is decided when the
// burst settles.
package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherClosed is returned after Close.
var ErrWatcherClosed = errors.New("watcher is closed")

// DefaultDelay is the default coalescing window.
const DefaultDelay = 100 * time.Millisecond

// Change describes an external change to a tracked file.
type Change struct {
	Path    string
	Removed bool
}

// Handler receives changes. It is called from a timer goroutine.
type Handler func(Change)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the coalescing window.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.log = logger
		}
	}
}

// Watcher tracks a set of files for external modification.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	handler Handler
	log     *zap.Logger
	delay   time.Duration

	files   map[string]struct{}
	dirs    map[string]int
	pending map[string]*time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher that reports changes to handler.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		handler: handler,
		log:     zap.NewNop(),
		delay:   DefaultDelay,
		files:   make(map[string]struct{}),
		dirs:    make(map[string]int),
		pending: make(map[string]*time.Timer),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("watcher")

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Track starts reporting changes to path. Tracking a path twice is a no-op.
func (w *Watcher) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Untrack stops reporting changes to path.
func (w *Watcher) Untrack(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.pending[abs]; ok {
		t.Stop()
		delete(w.pending, abs)
	}

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fsw.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return err
	}
	return nil
}

// Tracked returns the tracked paths, sorted.
func (w *Watcher) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	_, tracked := w.files[path]
	w.mu.Unlock()

	if !tracked {
		return
	}
	_, err := os.Stat(path)
	change := Change{Path: path, Removed: errors.Is(err, fs.ErrNotExist)}
	w.log.Debug("external change", zap.String("path", path), zap.Bool("removed", change.Removed))
	w.handler(change)
}
