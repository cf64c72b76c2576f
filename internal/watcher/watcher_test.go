package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWatcher(t *testing.T) (*Watcher, <-chan Change) {
	t.Helper()
	ch := make(chan Change, 16)
	w, err := New(func(c Change) { ch <- c },
		WithDelay(20*time.Millisecond),
		WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, ch
}

func waitChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestWatcher_ReportsWriteAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	w, ch := newTestWatcher(t)
	require.NoError(t, w.Track(path))

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	c := waitChange(t, ch)
	assert.Equal(t, path, c.Path)
	assert.False(t, c.Removed)

	require.NoError(t, os.Remove(path))
	c = waitChange(t, ch)
	assert.Equal(t, path, c.Path)
	assert.True(t, c.Removed)
}

func TestWatcher_IgnoresUntrackedSiblings(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "tracked.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("x"), 0o644))

	w, ch := newTestWatcher(t)
	require.NoError(t, w.Track(tracked))

	require.NoError(t, os.WriteFile(other, []byte("y"), 0o644))
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	ch := make(chan Change, 16)
	w, err := New(func(c Change) { ch <- c }, WithDelay(200*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Track(path))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
	}
	waitChange(t, ch)
	select {
	case c := <-ch:
		t.Fatalf("burst produced a second change %+v", c)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_TrackUntrack(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	w, _ := newTestWatcher(t)
	require.NoError(t, w.Track(a))
	require.NoError(t, w.Track(a))
	require.NoError(t, w.Track(b))
	assert.Equal(t, []string{a, b}, w.Tracked())

	require.NoError(t, w.Untrack(a))
	require.NoError(t, w.Untrack(a))
	assert.Equal(t, []string{b}, w.Tracked())

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Track(a), ErrWatcherClosed)
	assert.NoError(t, w.Close())
}
