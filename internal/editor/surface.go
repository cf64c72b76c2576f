package editor

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Surface is the display handle of an editor. The display holds it without
// owning the editor behind it.
type Surface interface {
	// ID uniquely identifies the surface for the lifetime of the process.
	ID() string

	// Dispose releases display resources. It is idempotent.
	Dispose()

	Disposed() bool
}

// BaseSurface is an embeddable Surface implementation.
type BaseSurface struct {
	id       string
	disposed atomic.Bool
}

// NewBaseSurface creates a surface with a fresh ID.
func NewBaseSurface() *BaseSurface {
	return &BaseSurface{id: uuid.NewString()}
}

// ID implements Surface.
func (s *BaseSurface) ID() string { return s.id }

// Dispose implements Surface.
func (s *BaseSurface) Dispose() { s.disposed.Store(true) }

// Disposed implements Surface.
func (s *BaseSurface) Disposed() bool { return s.disposed.Load() }
