// Package jsondoc implements a JSON editor backend on top of plaintext.
//
// Saving refuses invalid JSON so a half-edited document never replaces a
// valid file on disk. Formatting on save is optional.
package jsondoc

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/editor/plaintext"
)

// ErrInvalidJSON is returned when saving malformed JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Options controls save behavior.
type Options struct {
	// Format pretty-prints the document on save.
	Format bool

	// Indent is the indentation used when formatting. Defaults to two spaces.
	Indent string

	// SortKeys sorts object keys when formatting.
	SortKeys bool

	// ReadOnly opens documents read-only.
	ReadOnly bool
}

// Editor is a JSON document editor.
type Editor struct {
	*plaintext.Editor
}

// New creates an unloaded JSON editor.
func New(host editor.Host, opts Options) *Editor {
	popts := []plaintext.Option{plaintext.WithSaveTransform(transform(opts))}
	if opts.ReadOnly {
		popts = append(popts, plaintext.WithReadOnly())
	}
	return &Editor{Editor: plaintext.New(host, popts...)}
}

// Constructor returns an editor.Constructor for this backend.
func Constructor(opts Options) editor.Constructor {
	return func(host editor.Host) editor.Editor {
		return New(host, opts)
	}
}

func transform(opts Options) func(string) (string, error) {
	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}
	return func(text string) (string, error) {
		if !gjson.Valid(text) {
			return "", ErrInvalidJSON
		}
		if !opts.Format {
			return text, nil
		}
		out := pretty.PrettyOptions([]byte(text), &pretty.Options{
			Width:    80,
			Indent:   indent,
			SortKeys: opts.SortKeys,
		})
		return string(out), nil
	}
}

// Valid reports whether the current content is valid JSON.
func (e *Editor) Valid() bool {
	return gjson.Valid(e.Text())
}

// Query evaluates a gjson path against the current content.
func (e *Editor) Query(path string) gjson.Result {
	return gjson.Get(e.Text(), path)
}
