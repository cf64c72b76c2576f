package plaintext

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/vfs"
)

func newHost(t *testing.T, fs vfs.VFS) *editor.StaticHost {
	t.Helper()
	return &editor.StaticHost{Files: fs, Log: zaptest.NewLogger(t)}
}

func TestEditor_LoadSave(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "one\ntwo\n"))

	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/a.txt"))

	assert.Equal(t, "/a.txt", e.Path())
	assert.Equal(t, []string{"one", "two", ""}, e.Lines())
	assert.False(t, e.IsModified())

	e.SetCursor(editor.Position{Line: 1, Column: 3})
	require.NoError(t, e.Insert("!"))
	assert.True(t, e.IsModified())

	require.NoError(t, e.Save("/a.txt"))
	assert.False(t, e.IsModified())

	data, err := fs.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo!\n", string(data))
}

func TestEditor_LoadFailureLeavesNoPath(t *testing.T) {
	e := New(newHost(t, vfs.NewMemFS()))
	err := e.Load("/missing.txt")
	require.Error(t, err)
	assert.Empty(t, e.Path())
}

func TestEditor_RejectsBinary(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/img.bin", "PK\x00\x01\x02\x00\x00"))

	e := New(newHost(t, fs))
	err := e.Load("/img.bin")
	assert.ErrorIs(t, err, ErrBinary)
	assert.Empty(t, e.Path())
}

func TestEditor_RejectsTooLarge(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/big.txt", "0123456789"))

	host := newHost(t, fs)
	host.MaxSize = 4
	err := New(host).Load("/big.txt")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEditor_PreservesCRLF(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/w.txt", "a\r\nb\r\n"))

	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/w.txt"))
	assert.Equal(t, vfs.LineEndingCRLF, e.LineEnding())
	assert.Equal(t, "a\nb\n", e.Text())

	require.NoError(t, e.SetText("a\nb\nc\n"))
	require.NoError(t, e.Save("/w.txt"))

	data, err := fs.ReadFile("/w.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\nc\r\n", string(data))
}

func TestEditor_ModifyObserversFireOnTransitions(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/a.txt"))

	var got []bool
	e.OnModify(func(ed editor.Editor, modified bool) {
		assert.Same(t, e, ed)
		got = append(got, modified)
	})

	require.NoError(t, e.Insert("a"))
	require.NoError(t, e.Insert("b"))
	e.SetModified(false)
	e.SetModified(false)

	assert.Equal(t, []bool{true, false}, got)
}

func TestEditor_ReadOnly(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	e := New(newHost(t, fs), WithReadOnly())
	require.NoError(t, e.Load("/a.txt"))

	assert.True(t, e.IsReadOnly())
	assert.ErrorIs(t, e.Insert("y"), ErrReadOnly)
	assert.ErrorIs(t, e.DeleteBackward(), ErrReadOnly)
	assert.ErrorIs(t, e.Save("/a.txt"), ErrReadOnly)

	e.SetReadOnly(false)
	assert.NoError(t, e.Insert("y"))
}

func TestEditor_InsertAndDeleteAcrossLines(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "héllo"))
	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/a.txt"))

	e.SetCursor(editor.Position{Line: 0, Column: 2})
	require.NoError(t, e.Insert("X\nY"))
	assert.Equal(t, []string{"héX", "Yllo"}, e.Lines())
	assert.Equal(t, editor.Position{Line: 1, Column: 1}, e.Cursor())

	require.NoError(t, e.DeleteBackward())
	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, []string{"héXllo"}, e.Lines())
	assert.Equal(t, editor.Position{Line: 0, Column: 3}, e.Cursor())

	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, "héllo", e.Text())
	assert.Equal(t, 1, e.WordCount())
}

func TestEditor_SetCursorClamps(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "ab\ncd"))
	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/a.txt"))

	e.SetCursor(editor.Position{Line: 9, Column: 9})
	assert.Equal(t, editor.Position{Line: 1, Column: 2}, e.Cursor())

	e.SetCursor(editor.Position{Line: -1, Column: -1})
	assert.Equal(t, editor.Position{}, e.Cursor())
}

func TestEditor_RequestClose(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))

	tests := []struct {
		name    string
		choice  editor.CloseChoice
		want    bool
		content string
	}{
		{"cancel", editor.CloseCancel, false, "x"},
		{"discard", editor.CloseDiscard, true, "x"},
		{"save", editor.CloseSave, true, "xy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, fs.AddFile("/a.txt", "x"))
			host := newHost(t, fs)
			host.Confirm = func(path string) editor.CloseChoice {
				assert.Equal(t, "/a.txt", path)
				return tt.choice
			}
			e := New(host)
			require.NoError(t, e.Load("/a.txt"))
			e.SetCursor(editor.Position{Column: 1})
			require.NoError(t, e.Insert("y"))

			assert.Equal(t, tt.want, e.RequestClose())
			data, err := fs.ReadFile("/a.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestEditor_RequestCloseUnmodifiedNeverPrompts(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	host := newHost(t, fs)
	host.Confirm = func(string) editor.CloseChoice {
		t.Fatal("unexpected prompt")
		return editor.CloseCancel
	}
	e := New(host)
	require.NoError(t, e.Load("/a.txt"))
	assert.True(t, e.RequestClose())
}

func TestEditor_RequestCloseSaveFailureRejects(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	fs.FailWrites("/a.txt", errors.New("disk full"))

	host := newHost(t, fs)
	host.Confirm = func(string) editor.CloseChoice { return editor.CloseSave }
	e := New(host)
	require.NoError(t, e.Load("/a.txt"))
	require.NoError(t, e.Insert("y"))

	assert.False(t, e.RequestClose())
	assert.True(t, e.IsModified())
}

func TestEditor_Reload(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "one"))
	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/a.txt"))

	changed, err := e.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, fs.AddFile("/a.txt", "one\ntwo"))
	changed, err = e.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, e.LineCount())

	_, err = New(newHost(t, fs)).Reload()
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestEditor_SaveTransformError(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	boom := errors.New("boom")
	e := New(newHost(t, fs), WithSaveTransform(func(string) (string, error) { return "", boom }))
	require.NoError(t, e.Load("/a.txt"))
	require.NoError(t, e.Insert("y"))

	assert.ErrorIs(t, e.Save("/a.txt"), boom)
	assert.True(t, e.IsModified())
}

// repeatCodec expands every byte into ten on decode.
type repeatCodec struct{}

func (repeatCodec) Decode(raw []byte) ([]byte, error) {
	return bytes.Repeat(raw, 10), nil
}

func (repeatCodec) Encode(data []byte) ([]byte, error) { return data, nil }

func TestEditor_RejectsTooLargeAfterDecode(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.rep", "abcd"))

	host := newHost(t, fs)
	host.MaxSize = 16
	e := New(host, WithCodec(repeatCodec{}))

	err := e.Load("/a.rep")
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, e.Path())
}

func TestEditor_SaveKeepsTransformedText(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/a.txt", "x"))
	upper := func(s string) (string, error) { return strings.ToUpper(s) + "\n", nil }
	e := New(newHost(t, fs), WithSaveTransform(upper))
	require.NoError(t, e.Load("/a.txt"))

	require.NoError(t, e.SetText("abc\ndef"))
	e.SetCursor(editor.Position{Line: 1, Column: 3})
	require.NoError(t, e.Save("/a.txt"))

	data, err := fs.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, string(data), e.Text())
	assert.False(t, e.IsModified())
	assert.Equal(t, editor.Position{Line: 1, Column: 3}, e.Cursor())

	changed, err := e.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEditor_ReloadCRLFUnchanged(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.AddFile("/w.txt", "a\r\nb\r\n"))
	e := New(newHost(t, fs))
	require.NoError(t, e.Load("/w.txt"))

	changed, err := e.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}
