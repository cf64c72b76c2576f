package plaintext

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/vfs"
)

// splitAt splits s at rune column col.
func splitAt(s string, col int) (string, string) {
	i := 0
	for n := 0; n < col && i < len(s); n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}

// Insert inserts text at the cursor and moves the cursor past it.
func (e *Editor) Insert(text string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if text == "" {
		return nil
	}

	before, after := splitAt(e.lines[e.cursor.Line], e.cursor.Column)
	ins := vfs.SplitLines(text)

	replaced := make([]string, 0, len(ins))
	for i, l := range ins {
		if i == 0 {
			l = before + l
		}
		replaced = append(replaced, l)
	}
	last := len(replaced) - 1
	col := utf8.RuneCountInString(replaced[last])
	replaced[last] += after

	lines := make([]string, 0, len(e.lines)+last)
	lines = append(lines, e.lines[:e.cursor.Line]...)
	lines = append(lines, replaced...)
	lines = append(lines, e.lines[e.cursor.Line+1:]...)
	e.lines = lines

	e.cursor = editor.Position{Line: e.cursor.Line + last, Column: col}
	e.SetModified(true)
	return nil
}

// DeleteBackward removes the rune before the cursor, joining lines at a
// line start. It does nothing at the start of the document.
func (e *Editor) DeleteBackward() error {
	if e.readOnly {
		return ErrReadOnly
	}
	line, col := e.cursor.Line, e.cursor.Column

	switch {
	case col > 0:
		before, after := splitAt(e.lines[line], col)
		_, size := utf8.DecodeLastRuneInString(before)
		e.lines[line] = before[:len(before)-size] + after
		e.cursor.Column--
	case line > 0:
		prev := e.lines[line-1]
		e.lines[line-1] = prev + e.lines[line]
		e.lines = append(e.lines[:line], e.lines[line+1:]...)
		e.cursor = editor.Position{Line: line - 1, Column: utf8.RuneCountInString(prev)}
	default:
		return nil
	}
	e.SetModified(true)
	return nil
}

// SetText replaces the whole document.
func (e *Editor) SetText(text string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if text == e.Text() {
		return nil
	}
	e.lines = vfs.SplitLines(text)
	e.SetCursor(e.cursor)
	e.SetModified(true)
	return nil
}

// Line returns line n, or an empty string when out of range.
func (e *Editor) Line(n int) string {
	if n < 0 || n >= len(e.lines) {
		return ""
	}
	return e.lines[n]
}

// WordCount returns the number of whitespace-separated words.
func (e *Editor) WordCount() int {
	n := 0
	for _, l := range e.lines {
		n += len(strings.Fields(l))
	}
	return n
}
