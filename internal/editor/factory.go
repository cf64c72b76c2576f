package editor

import "sync"

type registration struct {
	recognizer Recognizer
	ctor       Constructor
}

// Factory maps paths to editor constructors.
//
// Registrations are evaluated in insertion order and the first recognizer
// that accepts a path wins. Registering the same recognizer twice keeps
// both entries; the earlier one always matches first.
type Factory struct {
	mu       sync.RWMutex
	regs     []registration
	fallback *registration
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Register appends a backend registration.
func (f *Factory) Register(r Recognizer, ctor Constructor) {
	if r == nil || ctor == nil {
		return
	}
	f.mu.Lock()
	f.regs = append(f.regs, registration{recognizer: r, ctor: ctor})
	f.mu.Unlock()
}

// RegisterFallback sets the registration consulted after all others.
// A later call replaces the previous fallback.
func (f *Factory) RegisterFallback(r Recognizer, ctor Constructor) {
	if r == nil || ctor == nil {
		return
	}
	f.mu.Lock()
	f.fallback = &registration{recognizer: r, ctor: ctor}
	f.mu.Unlock()
}

// Create returns an unloaded editor for path, or false when no
// registration recognizes it.
func (f *Factory) Create(path string, host Host) (Editor, bool) {
	f.mu.RLock()
	regs := make([]registration, len(f.regs), len(f.regs)+1)
	copy(regs, f.regs)
	if f.fallback != nil {
		regs = append(regs, *f.fallback)
	}
	f.mu.RUnlock()

	for _, reg := range regs {
		if !reg.recognizer.Recognize(path) {
			continue
		}
		ed := reg.ctor(host)
		if ed == nil {
			continue
		}
		return ed, true
	}
	return nil, false
}

// Len returns the number of registrations, not counting the fallback.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.regs)
}

// HasFallback reports whether a fallback is registered.
func (f *Factory) HasFallback() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fallback != nil
}
