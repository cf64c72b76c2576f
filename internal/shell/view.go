package shell

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/session"
)

// TextSource is implemented by editors that expose their lines.
type TextSource interface {
	Lines() []string
}

// editable is implemented by editors that accept keyboard input.
type editable interface {
	Insert(text string) error
	DeleteBackward() error
}

// View draws the selector row, the current document and a status line.
type View struct {
	screen  tcell.Screen
	manager *session.Manager
	combo   *Combo
	log     *zap.Logger
	status  string
	top     int
}

// Styles.
var (
	styleDefault  = tcell.StyleDefault
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleStatus   = tcell.StyleDefault.Reverse(true).Bold(true)
)

// NewView creates a view on screen. The screen must be initialized.
func NewView(screen tcell.Screen, manager *session.Manager, combo *Combo, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{screen: screen, manager: manager, combo: combo, log: logger.Named("view")}
}

// SetStatus sets the message shown in the status line until the next key.
func (v *View) SetStatus(format string, args ...any) {
	v.status = fmt.Sprintf(format, args...)
}

// Status returns the current status message.
func (v *View) Status() string { return v.status }

// drawString draws s at (x, y) clipped to maxX, returning the next column.
func (v *View) drawString(x, y, maxX int, s string, style tcell.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if x+w > maxX {
			break
		}
		runes := g.Runes()
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// Draw renders the whole screen.
func (v *View) Draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}

	v.drawSelector(w)
	if h > 2 {
		v.drawDocument(w, h-2)
	}
	if h > 1 {
		v.drawStatus(w, h-1)
	}
	v.screen.Show()
}

func (v *View) drawSelector(w int) {
	x := 0
	for i, e := range v.combo.Entries() {
		if i > 0 {
			x = v.drawString(x, 0, w, " | ", styleDefault)
		}
		style := styleDefault
		if i == v.combo.Current() {
			style = styleSelected
		}
		label := e.Label
		if e.Icon != "" {
			label = string(e.Icon) + " " + label
		}
		x = v.drawString(x, 0, w, label, style)
	}
}

func (v *View) drawDocument(w, rows int) {
	ed, ok := v.manager.CurrentEditor()
	if !ok {
		v.drawString(0, 1, w, "no document", styleDefault)
		return
	}
	lines := documentLines(ed)

	cur := ed.Cursor()
	if cur.Line < v.top {
		v.top = cur.Line
	}
	if cur.Line >= v.top+rows {
		v.top = cur.Line - rows + 1
	}

	for row := 0; row < rows && v.top+row < len(lines); row++ {
		v.drawString(0, row+1, w, lines[v.top+row], styleDefault)
	}

	if cur.Line < len(lines) {
		before := []rune(lines[cur.Line])
		col := min(cur.Column, len(before))
		v.screen.ShowCursor(uniseg.StringWidth(string(before[:col])), cur.Line-v.top+1)
	}
}

func documentLines(ed editor.Editor) []string {
	switch src := ed.(type) {
	case TextSource:
		return src.Lines()
	case editor.Texter:
		return strings.Split(src.Text(), "\n")
	default:
		return nil
	}
}

func (v *View) drawStatus(w, y int) {
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	left := v.status
	if left == "" {
		if cur := v.manager.CurrentDocument(); cur != "" {
			left = cur
			if ed, ok := v.manager.EditorFor(cur); ok {
				if ed.IsModified() {
					left += " [+]"
				}
				if ed.IsReadOnly() {
					left += " [RO]"
				}
			}
		}
	}
	v.drawString(0, y, w, left, styleStatus)

	right := fmt.Sprintf("%d open", v.manager.DocumentCount())
	if ed, ok := v.manager.CurrentEditor(); ok {
		pos := ed.Cursor()
		right = fmt.Sprintf("Ln %d, Col %d  %s", pos.Line+1, pos.Column+1, right)
	}
	if rw := uniseg.StringWidth(right); rw < w {
		v.drawString(w-rw, y, w, right, styleStatus)
	}
}

// HandleKey applies a key event and reports whether the user asked to quit.
func (v *View) HandleKey(ev *tcell.EventKey) (quit bool) {
	v.status = ""

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		if unsaved := v.manager.UnsavedDocuments(); len(unsaved) > 0 {
			v.SetStatus("%d unsaved: Ctrl-S to save, Ctrl-W to close", len(unsaved))
			return false
		}
		return true
	case tcell.KeyCtrlS:
		v.report("save", v.manager.SaveCurrent())
	case tcell.KeyCtrlW:
		closed, err := v.manager.CloseCurrent()
		v.report("close", err)
		if err == nil && !closed {
			v.SetStatus("close cancelled")
		}
	case tcell.KeyCtrlR:
		v.report("reload", v.manager.ReloadCurrent())
	case tcell.KeyCtrlN:
		v.manager.FocusNext()
	case tcell.KeyCtrlP:
		v.manager.FocusPrevious()
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight, tcell.KeyHome, tcell.KeyEnd:
		v.moveCursor(ev.Key())
	case tcell.KeyEnter:
		v.edit(func(e editable) error { return e.Insert("\n") })
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.edit(func(e editable) error { return e.DeleteBackward() })
	case tcell.KeyTab:
		v.edit(func(e editable) error { return e.Insert("\t") })
	case tcell.KeyRune:
		r := ev.Rune()
		v.edit(func(e editable) error { return e.Insert(string(r)) })
	}
	return false
}

func (v *View) report(op string, err error) {
	if err != nil {
		v.log.Debug("command failed", zap.String("op", op), zap.Error(err))
		v.SetStatus("%s: %v", op, err)
	}
}

func (v *View) edit(fn func(editable) error) {
	ed, ok := v.manager.CurrentEditor()
	if !ok {
		return
	}
	e, ok := ed.(editable)
	if !ok {
		v.SetStatus("document is not editable")
		return
	}
	v.report("edit", fn(e))
}

func (v *View) moveCursor(key tcell.Key) {
	ed, ok := v.manager.CurrentEditor()
	if !ok {
		return
	}
	pos := ed.Cursor()
	switch key {
	case tcell.KeyUp:
		pos.Line--
	case tcell.KeyDown:
		pos.Line++
	case tcell.KeyLeft:
		pos.Column--
	case tcell.KeyRight:
		pos.Column++
	case tcell.KeyHome:
		pos.Column = 0
	case tcell.KeyEnd:
		pos.Column = 1 << 30
	}
	ed.SetCursor(pos)
}
