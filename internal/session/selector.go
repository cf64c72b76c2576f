package session

import "path/filepath"

// synchronizer keeps a Selector consistent with the registry and focus.
//
// Every change it makes to the selector runs with updating set, so the
// selection-changed callback it receives for its own edits is dropped
// instead of re-entering the manager.
type synchronizer struct {
	sel      Selector
	icons    IconResolver
	cancel   func()
	updating bool

	// open is invoked for user-driven selections.
	open func(id string)
}

func newSynchronizer(icons IconResolver, open func(id string)) *synchronizer {
	return &synchronizer{icons: icons, open: open}
}

// attach replaces the selector, detaching the previous one.
func (s *synchronizer) attach(sel Selector) {
	s.detach()
	s.sel = sel
	if sel == nil {
		return
	}
	s.cancel = sel.OnSelectionChanged(s.selectionChanged)
}

func (s *synchronizer) detach() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.sel = nil
}

func (s *synchronizer) selectionChanged(_ int, id string) {
	if s.updating || id == "" {
		return
	}
	s.open(id)
}

func (s *synchronizer) guard(fn func()) {
	if s.sel == nil {
		return
	}
	prev := s.updating
	s.updating = true
	defer func() { s.updating = prev }()
	fn()
}

func (s *synchronizer) icon(id string, modified bool) Icon {
	if modified {
		return ModifiedIcon
	}
	if s.icons == nil {
		return ""
	}
	return s.icons.IconFor(id)
}

// focus materializes the entry for id on first appearance and selects it.
func (s *synchronizer) focus(id string, modified bool) {
	s.guard(func() {
		idx := s.sel.Find(id)
		if idx < 0 {
			s.sel.Insert(filepath.Base(id), s.icon(id, modified), id)
			s.sel.Sort()
			idx = s.sel.Find(id)
		}
		if s.sel.Current() != idx {
			s.sel.SetCurrent(idx)
		}
	})
}

// refresh re-renders the icon of an existing entry.
func (s *synchronizer) refresh(id string, modified bool) {
	s.guard(func() {
		if idx := s.sel.Find(id); idx >= 0 {
			s.sel.SetIcon(idx, s.icon(id, modified))
		}
	})
}

func (s *synchronizer) remove(id string) {
	s.guard(func() {
		if idx := s.sel.Find(id); idx >= 0 {
			s.sel.Remove(idx)
		}
	})
}
