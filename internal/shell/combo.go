package shell

import (
	"sort"

	"github.com/dshills/docshell/internal/session"
)

// Entry is one selector row.
type Entry struct {
	Label string
	Icon  session.Icon
	ID    string
}

// Combo is a single-selection list of document entries.
//
// Inserting into an empty combo selects the new entry. Selection-changed
// callbacks fire only when the selected index changes, including changes
// caused by inserts and removals.
type Combo struct {
	entries []Entry
	current int
	changed listeners[func(int, string)]
}

var _ session.Selector = (*Combo)(nil)

// NewCombo creates an empty combo.
func NewCombo() *Combo {
	return &Combo{current: -1}
}

// Insert implements session.Selector. The entry is appended.
func (c *Combo) Insert(label string, icon session.Icon, id string) {
	c.entries = append(c.entries, Entry{Label: label, Icon: icon, ID: id})
	if c.current < 0 {
		c.setCurrent(0)
	}
}

// Remove implements session.Selector.
func (c *Combo) Remove(index int) {
	if index < 0 || index >= len(c.entries) {
		return
	}
	c.entries = append(c.entries[:index], c.entries[index+1:]...)

	switch {
	case index < c.current:
		c.setCurrent(c.current - 1)
	case index == c.current:
		// The neighbor slides into the removed slot.
		c.current = min(index, len(c.entries)-1)
		c.notify()
	}
}

// Find implements session.Selector.
func (c *Combo) Find(id string) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Sort implements session.Selector. The selected entry stays selected and
// no callback fires.
func (c *Combo) Sort() {
	var selected string
	if c.current >= 0 {
		selected = c.entries[c.current].ID
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Label < c.entries[j].Label
	})
	if c.current >= 0 {
		c.current = c.Find(selected)
	}
}

// SetIcon implements session.Selector.
func (c *Combo) SetIcon(index int, icon session.Icon) {
	if index >= 0 && index < len(c.entries) {
		c.entries[index].Icon = icon
	}
}

// SetCurrent implements session.Selector.
func (c *Combo) SetCurrent(index int) {
	if index < -1 || index >= len(c.entries) {
		return
	}
	c.setCurrent(index)
}

// Select is the user-driven selection, used by the view.
func (c *Combo) Select(index int) { c.SetCurrent(index) }

func (c *Combo) setCurrent(index int) {
	if index == c.current {
		return
	}
	c.current = index
	c.notify()
}

func (c *Combo) notify() {
	id := ""
	if c.current >= 0 {
		id = c.entries[c.current].ID
	}
	for _, fn := range c.changed.snapshot() {
		fn(c.current, id)
	}
}

// Current implements session.Selector.
func (c *Combo) Current() int { return c.current }

// Len implements session.Selector.
func (c *Combo) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in display order.
func (c *Combo) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Labels returns the entry labels in display order.
func (c *Combo) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// OnSelectionChanged implements session.Selector.
func (c *Combo) OnSelectionChanged(fn func(int, string)) func() {
	return c.changed.add(fn)
}
