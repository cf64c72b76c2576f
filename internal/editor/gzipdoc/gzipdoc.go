// Package gzipdoc edits gzip-compressed text files transparently.
package gzipdoc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/editor/plaintext"
)

// Codec compresses on save and decompresses on load.
type Codec struct {
	// Level is the gzip compression level. Zero uses the default.
	Level int
}

var _ plaintext.LimitDecoder = Codec{}

// Decode implements plaintext.Codec.
func (c Codec) Decode(raw []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DecodeLimit implements plaintext.LimitDecoder. Decompression stops one
// byte past limit so oversized archives are never fully expanded.
func (c Codec) DecodeLimit(raw []byte, limit int64) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: decompressed size exceeds %d bytes", plaintext.ErrTooLarge, limit)
	}
	return out, nil
}

// Encode implements plaintext.Codec.
func (c Codec) Encode(data []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// New creates an unloaded gzip text editor. Extra options are applied
// after the codec.
func New(host editor.Host, level int, opts ...plaintext.Option) *plaintext.Editor {
	return plaintext.New(host, append([]plaintext.Option{plaintext.WithCodec(Codec{Level: level})}, opts...)...)
}

// Constructor returns an editor.Constructor for this backend.
func Constructor(level int, opts ...plaintext.Option) editor.Constructor {
	return func(host editor.Host) editor.Editor {
		return New(host, level, opts...)
	}
}

// Recognizer matches gzip files by extension.
func Recognizer() editor.Recognizer {
	return editor.ExtensionRecognizer(".gz")
}
