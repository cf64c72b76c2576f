package event

import (
	"sort"
	"sync"

	"github.com/dshills/docshell/internal/event/topic"
)

// registry manages subscriptions. It is safe for concurrent access.
type registry struct {
	mu   sync.RWMutex
	byID map[string]*subscription
	seq  uint64
}

func newRegistry() *registry {
	return &registry{byID: make(map[string]*subscription)}
}

func (r *registry) nextSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

func (r *registry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sub.id] = sub
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

// match returns a snapshot of active subscriptions whose pattern matches t,
// ordered by priority and then by subscription order.
func (r *registry) match(t topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*subscription
	for _, sub := range r.byID {
		if sub.IsActive() && t.Matches(sub.pattern) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].config.Priority != out[j].config.Priority {
			return out[i].config.Priority < out[j].config.Priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func (r *registry) countActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, sub := range r.byID {
		if sub.IsActive() {
			n++
		}
	}
	return n
}
