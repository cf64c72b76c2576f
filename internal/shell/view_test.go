package shell

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/session"
	"github.com/dshills/docshell/internal/vfs"
)

type viewFixture struct {
	fs     *vfs.MemFS
	mgr    *session.Manager
	combo  *Combo
	screen tcell.SimulationScreen
	view   *View
}

func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "alpha\nbeta"))
	require.NoError(t, fs.AddFile("/b.txt", "bravo"))

	combo := NewCombo()
	mgr := session.New(editor.NewFactory(), fs, NewStack(),
		session.DeferFunc(func(fn func()) { fn() }),
		session.WithSelector(combo),
		session.WithIcons(NewIcons(fs)),
	)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 6)
	t.Cleanup(screen.Fini)

	return &viewFixture{
		fs:     fs,
		mgr:    mgr,
		combo:  combo,
		screen: screen,
		view:   NewView(screen, mgr, combo, nil),
	}
}

func (f *viewFixture) row(y int) string {
	w, _ := f.screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := f.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestView_DrawsSelectorAndDocument(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.mgr.OpenDocument("/b.txt"))
	require.NoError(t, f.mgr.OpenDocument("/a.txt"))

	f.view.Draw()

	assert.Equal(t, "T a.txt | T b.txt", f.row(0))
	assert.Equal(t, "alpha", f.row(1))
	assert.Equal(t, "beta", f.row(2))
	assert.True(t, strings.HasPrefix(f.row(5), "/a.txt"))
	assert.Contains(t, f.row(5), "Ln 1, Col 1  2 open")
}

func TestView_EditingMarksModified(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.mgr.OpenDocument("/a.txt"))

	assert.False(t, f.view.HandleKey(runeKey('!')))
	f.view.Draw()

	assert.Equal(t, "!alpha", f.row(1))
	assert.Equal(t, "● a.txt", f.row(0))
	assert.Contains(t, f.row(5), "[+]")

	// Quit is refused while changes are unsaved.
	assert.False(t, f.view.HandleKey(key(tcell.KeyCtrlQ)))
	assert.Contains(t, f.view.Status(), "1 unsaved")

	f.view.HandleKey(key(tcell.KeyCtrlS))
	assert.Empty(t, f.view.Status())
	data, err := f.fs.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "!alpha\nbeta", string(data))

	assert.True(t, f.view.HandleKey(key(tcell.KeyCtrlQ)))
}

func TestView_CycleAndClose(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.mgr.OpenDocument("/a.txt"))
	require.NoError(t, f.mgr.OpenDocument("/b.txt"))

	f.view.HandleKey(key(tcell.KeyCtrlN))
	assert.Equal(t, "/a.txt", f.mgr.CurrentDocument())
	f.view.HandleKey(key(tcell.KeyCtrlP))
	assert.Equal(t, "/b.txt", f.mgr.CurrentDocument())

	f.view.HandleKey(key(tcell.KeyCtrlW))
	assert.Equal(t, []string{"/a.txt"}, f.mgr.Documents())
	assert.Equal(t, "/a.txt", f.mgr.CurrentDocument())
	assert.Equal(t, []string{"a.txt"}, f.combo.Labels())
}

func TestView_CloseCancelledWhenModified(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.mgr.OpenDocument("/a.txt"))
	f.view.HandleKey(runeKey('x'))

	f.view.HandleKey(key(tcell.KeyCtrlW))
	assert.Equal(t, "close cancelled", f.view.Status())
	assert.Equal(t, 1, f.mgr.DocumentCount())
}

func TestView_CursorMovement(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.mgr.OpenDocument("/a.txt"))

	f.view.HandleKey(key(tcell.KeyDown))
	f.view.HandleKey(key(tcell.KeyEnd))
	ed, ok := f.mgr.CurrentEditor()
	require.True(t, ok)
	assert.Equal(t, editor.Position{Line: 1, Column: 4}, ed.Cursor())

	f.view.HandleKey(key(tcell.KeyBackspace2))
	f.view.HandleKey(key(tcell.KeyEnter))
	assert.Equal(t, "alpha\nbet\n", ed.(editor.Texter).Text())
}

func TestView_NoDocument(t *testing.T) {
	f := newViewFixture(t)
	f.view.Draw()
	assert.Equal(t, "no document", f.row(1))
	assert.Contains(t, f.row(5), "0 open")
}
