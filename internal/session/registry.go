package session

import (
	"sort"

	"github.com/dshills/docshell/internal/editor"
)

type docState int

const (
	stateOpen docState = iota + 1
	stateClosing
)

type entry struct {
	ed    editor.Editor
	state docState
}

// registry maps document identities to live editors. A path being loaded
// is tracked separately so it never appears as a document before the load
// succeeds.
type registry struct {
	docs      map[string]*entry
	opening   map[string]struct{}
	bySurface map[string]string
}

func newRegistry() *registry {
	return &registry{
		docs:      make(map[string]*entry),
		opening:   make(map[string]struct{}),
		bySurface: make(map[string]string),
	}
}

func (r *registry) get(path string) (*entry, bool) {
	e, ok := r.docs[path]
	return e, ok
}

func (r *registry) isOpening(path string) bool {
	_, ok := r.opening[path]
	return ok
}

func (r *registry) beginOpen(path string) { r.opening[path] = struct{}{} }
func (r *registry) endOpen(path string)   { delete(r.opening, path) }

func (r *registry) insert(path string, ed editor.Editor) *entry {
	e := &entry{ed: ed, state: stateOpen}
	r.docs[path] = e
	r.bySurface[ed.Surface().ID()] = path
	return e
}

func (r *registry) remove(path string) {
	e, ok := r.docs[path]
	if !ok {
		return
	}
	delete(r.bySurface, e.ed.Surface().ID())
	delete(r.docs, path)
}

func (r *registry) pathFor(s editor.Surface) (string, bool) {
	if s == nil {
		return "", false
	}
	p, ok := r.bySurface[s.ID()]
	return p, ok
}

// paths returns a sorted snapshot of the open identities.
func (r *registry) paths() []string {
	out := make([]string, 0, len(r.docs))
	for p := range r.docs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (r *registry) len() int { return len(r.docs) }
