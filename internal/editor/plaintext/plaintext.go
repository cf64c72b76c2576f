// Package plaintext implements the default text editor backend.
//
// The document is held as a slice of lines with LF separators. The
// original encoding and line ending style are detected on load and
// restored on save, so a CRLF Windows-1252 file stays that way after an
// edit.
package plaintext

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/vfs"
)

var (
	// ErrBinary is returned when a file looks like binary data.
	ErrBinary = errors.New("binary content")

	// ErrTooLarge is returned when a file exceeds the host's size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrReadOnly is returned when modifying or saving a read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrNoPath is returned when reloading a document that was never loaded.
	ErrNoPath = errors.New("document has no path")
)

// Codec transforms raw file bytes before decoding and after encoding.
type Codec interface {
	Decode(raw []byte) ([]byte, error)
	Encode(data []byte) ([]byte, error)
}

// LimitDecoder is implemented by codecs that can stop decoding once the
// output would exceed limit bytes. They return ErrTooLarge in that case.
type LimitDecoder interface {
	DecodeLimit(raw []byte, limit int64) ([]byte, error)
}

// Option configures an Editor.
type Option func(*Editor)

// WithCodec sets the byte-level codec.
func WithCodec(c Codec) Option {
	return func(e *Editor) { e.codec = c }
}

// WithSaveTransform sets a hook applied to the LF-joined text before it is
// written. A hook error aborts the save.
func WithSaveTransform(fn func(text string) (string, error)) Option {
	return func(e *Editor) { e.saveTransform = fn }
}

// WithReadOnly starts the editor in read-only mode.
func WithReadOnly() Option {
	return func(e *Editor) { e.readOnly = true }
}

// Editor is a line-based text editor backend.
type Editor struct {
	*editor.BaseSurface

	host          editor.Host
	log           *zap.Logger
	codec         Codec
	saveTransform func(string) (string, error)

	path       string
	lines      []string
	encoding   vfs.Encoding
	lineEnding vfs.LineEnding

	modified  bool
	readOnly  bool
	cursor    editor.Position
	observers []editor.ModifyObserver
}

// Ensure Editor implements the capability interfaces.
var (
	_ editor.Editor   = (*Editor)(nil)
	_ editor.Reloader = (*Editor)(nil)
	_ editor.Texter   = (*Editor)(nil)
)

// New creates an unloaded editor.
func New(host editor.Host, opts ...Option) *Editor {
	e := &Editor{
		BaseSurface: editor.NewBaseSurface(),
		host:        host,
		log:         host.Logger().Named("plaintext"),
		lines:       []string{""},
		encoding:    vfs.EncodingUTF8,
		lineEnding:  vfs.LineEndingLF,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Constructor returns an editor.Constructor for this backend.
func Constructor(opts ...Option) editor.Constructor {
	return func(host editor.Host) editor.Editor {
		return New(host, opts...)
	}
}

// read loads and decodes path without touching editor state.
func (e *Editor) read(path string) (text string, enc vfs.Encoding, le vfs.LineEnding, err error) {
	fsys := e.host.FS()

	info, err := fsys.Stat(path)
	if err != nil {
		return "", "", "", err
	}
	limit := e.host.MaxFileSize()
	if limit > 0 && info.Size() > limit {
		return "", "", "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, info.Size(), limit)
	}

	raw, err := fsys.ReadFile(path)
	if err != nil {
		return "", "", "", err
	}
	if e.codec != nil {
		if raw, err = e.decode(raw, limit); err != nil {
			return "", "", "", err
		}
	}
	if vfs.IsBinary(raw) {
		return "", "", "", ErrBinary
	}

	text, enc, err = vfs.Decode(raw)
	if err != nil {
		return "", "", "", err
	}
	return text, enc, vfs.DetectLineEnding([]byte(text)), nil
}

// decode runs the codec, holding the decoded size to limit as well.
func (e *Editor) decode(raw []byte, limit int64) ([]byte, error) {
	if ld, ok := e.codec.(LimitDecoder); ok && limit > 0 {
		return ld.DecodeLimit(raw, limit)
	}
	out, err := e.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: decoded %d bytes exceeds %d", ErrTooLarge, len(out), limit)
	}
	return out, nil
}

// Load implements editor.Editor.
func (e *Editor) Load(path string) error {
	text, enc, le, err := e.read(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	e.path = path
	e.lines = vfs.SplitLines(text)
	e.encoding = enc
	e.lineEnding = le
	e.cursor = editor.Position{}
	e.modified = false

	e.log.Debug("loaded",
		zap.String("path", path),
		zap.String("encoding", string(enc)),
		zap.String("line_ending", string(le)),
		zap.Int("lines", len(e.lines)),
	)
	return nil
}

// Save implements editor.Editor.
func (e *Editor) Save(path string) error {
	if e.readOnly {
		return ErrReadOnly
	}

	text := e.Text()
	transformed := false
	if e.saveTransform != nil {
		out, err := e.saveTransform(text)
		if err != nil {
			return err
		}
		transformed = out != text
		text = out
	}
	// The buffer must hold what is written once the document is clean.
	lines := e.lines
	if transformed {
		lines = vfs.SplitLines(text)
	}
	if seq := e.lineEnding.Sequence(); seq != "\n" {
		text = strings.ReplaceAll(text, "\n", seq)
	}

	data, err := vfs.Encode(text, e.encoding)
	if err != nil {
		return err
	}
	if e.codec != nil {
		if data, err = e.codec.Encode(data); err != nil {
			return err
		}
	}
	if err := e.host.FS().WriteFile(path, data, 0o644); err != nil {
		return err
	}

	e.path = path
	if transformed {
		e.lines = lines
		e.SetCursor(e.cursor)
	}
	e.SetModified(false)
	e.log.Debug("saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Reload implements editor.Reloader.
func (e *Editor) Reload() (bool, error) {
	if e.path == "" {
		return false, ErrNoPath
	}
	text, enc, le, err := e.read(e.path)
	if err != nil {
		return false, fmt.Errorf("reload %s: %w", e.path, err)
	}
	e.encoding = enc
	e.lineEnding = le
	lines := vfs.SplitLines(text)
	if slices.Equal(lines, e.lines) {
		return false, nil
	}

	e.lines = lines
	e.SetCursor(e.cursor)
	e.SetModified(false)
	return true, nil
}

// Path implements editor.Editor.
func (e *Editor) Path() string { return e.path }

// IsModified implements editor.Editor.
func (e *Editor) IsModified() bool { return e.modified }

// SetModified implements editor.Editor. Observers fire only on transitions.
func (e *Editor) SetModified(modified bool) {
	if e.modified == modified {
		return
	}
	e.modified = modified
	for _, obs := range e.observers {
		obs(e, modified)
	}
}

// IsReadOnly implements editor.Editor.
func (e *Editor) IsReadOnly() bool { return e.readOnly }

// SetReadOnly implements editor.Editor.
func (e *Editor) SetReadOnly(readOnly bool) { e.readOnly = readOnly }

// Cursor implements editor.Editor.
func (e *Editor) Cursor() editor.Position { return e.cursor }

// SetCursor implements editor.Editor. The position is clamped to the content.
func (e *Editor) SetCursor(pos editor.Position) {
	pos.Line = max(0, min(pos.Line, len(e.lines)-1))
	pos.Column = max(0, min(pos.Column, utf8.RuneCountInString(e.lines[pos.Line])))
	e.cursor = pos
}

// OnModify implements editor.Editor.
func (e *Editor) OnModify(obs editor.ModifyObserver) {
	if obs != nil {
		e.observers = append(e.observers, obs)
	}
}

// Surface implements editor.Editor.
func (e *Editor) Surface() editor.Surface { return e.BaseSurface }

// RequestClose implements editor.Editor. A modified document asks the host.
func (e *Editor) RequestClose() bool {
	if !e.modified {
		return true
	}
	switch choice := e.host.ConfirmClose(e.path); choice {
	case editor.CloseSave:
		if err := e.Save(e.path); err != nil {
			e.log.Warn("save before close failed", zap.String("path", e.path), zap.Error(err))
			return false
		}
		return true
	case editor.CloseDiscard:
		return true
	default:
		return false
	}
}

// Text implements editor.Texter.
func (e *Editor) Text() string {
	return strings.Join(e.lines, "\n")
}

// Lines returns a copy of the document lines.
func (e *Editor) Lines() []string {
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// LineCount returns the number of lines.
func (e *Editor) LineCount() int { return len(e.lines) }

// Encoding returns the detected encoding.
func (e *Editor) Encoding() vfs.Encoding { return e.encoding }

// LineEnding returns the detected line ending style.
func (e *Editor) LineEnding() vfs.LineEnding { return e.lineEnding }
