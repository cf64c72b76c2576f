package shell

// listeners is an ordered set of callbacks with removable registrations.
type listeners[F any] struct {
	next int
	fns  []listener[F]
}

type listener[F any] struct {
	id int
	fn F
}

func (l *listeners[F]) add(fn F) func() {
	l.next++
	id := l.next
	l.fns = append(l.fns, listener[F]{id: id, fn: fn})
	return func() {
		for i, x := range l.fns {
			if x.id == id {
				l.fns = append(l.fns[:i:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

// snapshot returns the callbacks registered at call time, so a callback
// may unregister itself while being notified.
func (l *listeners[F]) snapshot() []F {
	out := make([]F, len(l.fns))
	for i, x := range l.fns {
		out[i] = x.fn
	}
	return out
}
