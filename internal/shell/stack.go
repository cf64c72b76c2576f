package shell

import (
	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/session"
)

// Stack holds editor surfaces and shows one at a time.
//
// Adding a surface never changes the current one. Removing the current
// surface makes its neighbor current, preferring the one that moved into
// its slot.
type Stack struct {
	surfaces []editor.Surface
	current  int
	changed  listeners[func(editor.Surface)]
}

var _ session.Display = (*Stack)(nil)

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{current: -1}
}

func (s *Stack) indexOf(surface editor.Surface) int {
	for i, x := range s.surfaces {
		if x == surface {
			return i
		}
	}
	return -1
}

// AddSurface implements session.Display.
func (s *Stack) AddSurface(surface editor.Surface) {
	if surface == nil || s.indexOf(surface) >= 0 {
		return
	}
	s.surfaces = append(s.surfaces, surface)
}

// RemoveSurface implements session.Display.
func (s *Stack) RemoveSurface(surface editor.Surface) {
	idx := s.indexOf(surface)
	if idx < 0 {
		return
	}
	s.surfaces = append(s.surfaces[:idx], s.surfaces[idx+1:]...)

	switch {
	case idx < s.current:
		s.current--
	case idx == s.current:
		s.current = min(idx, len(s.surfaces)-1)
		s.notify()
	}
}

// SetCurrent implements session.Display. Unknown surfaces are ignored.
func (s *Stack) SetCurrent(surface editor.Surface) {
	idx := s.indexOf(surface)
	if idx < 0 || idx == s.current {
		return
	}
	s.current = idx
	s.notify()
}

// Current implements session.Display.
func (s *Stack) Current() editor.Surface {
	if s.current < 0 {
		return nil
	}
	return s.surfaces[s.current]
}

// Len returns the number of surfaces.
func (s *Stack) Len() int { return len(s.surfaces) }

// Surfaces returns the surfaces in insertion order.
func (s *Stack) Surfaces() []editor.Surface {
	out := make([]editor.Surface, len(s.surfaces))
	copy(out, s.surfaces)
	return out
}

// OnCurrentChanged implements session.Display.
func (s *Stack) OnCurrentChanged(fn func(editor.Surface)) func() {
	return s.changed.add(fn)
}

func (s *Stack) notify() {
	cur := s.Current()
	for _, fn := range s.changed.snapshot() {
		fn(cur)
	}
}
