package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/docshell/internal/editor"
)

func TestStack_AddDoesNotChangeCurrent(t *testing.T) {
	s := NewStack()
	fired := 0
	s.OnCurrentChanged(func(editor.Surface) { fired++ })

	a := editor.NewBaseSurface()
	s.AddSurface(a)
	s.AddSurface(a)

	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Current())
	assert.Zero(t, fired)
}

func TestStack_SetCurrentFiresOnChangeOnly(t *testing.T) {
	s := NewStack()
	var got []editor.Surface
	s.OnCurrentChanged(func(sf editor.Surface) { got = append(got, sf) })

	a, b := editor.NewBaseSurface(), editor.NewBaseSurface()
	s.AddSurface(a)
	s.AddSurface(b)

	s.SetCurrent(a)
	s.SetCurrent(a)
	s.SetCurrent(b)
	s.SetCurrent(editor.NewBaseSurface())

	assert.Equal(t, []editor.Surface{a, b}, got)
	assert.Same(t, b, s.Current())
}

func TestStack_RemoveCurrentPicksNeighbor(t *testing.T) {
	s := NewStack()
	a, b, c := editor.NewBaseSurface(), editor.NewBaseSurface(), editor.NewBaseSurface()
	s.AddSurface(a)
	s.AddSurface(b)
	s.AddSurface(c)
	s.SetCurrent(b)

	var got []editor.Surface
	cancel := s.OnCurrentChanged(func(sf editor.Surface) { got = append(got, sf) })

	s.RemoveSurface(b)
	assert.Same(t, c, s.Current())

	s.RemoveSurface(a)
	assert.Same(t, c, s.Current())

	s.RemoveSurface(c)
	assert.Nil(t, s.Current())

	assert.Equal(t, []editor.Surface{c, nil}, got)

	cancel()
	s.AddSurface(a)
	s.SetCurrent(a)
	assert.Len(t, got, 2)
}
