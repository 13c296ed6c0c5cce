package store

import "sync"

// Op is the kind of change a subscriber is told about.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one document change.
type Event struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

type subscriber struct {
	collection string // "" subscribes to everything
	ch         chan Event
}

// hub fans document change events out to subscribers. Publishing never
// blocks: a subscriber that is not keeping up drops events and catches up
// from the store on its next read.
type hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

func (h *hub) subscribe(collection string) (<-chan Event, func()) {
	sub := &subscriber{collection: collection, ch: make(chan Event, 16)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}
	return sub.ch, cancel
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	for sub := range h.subs {
		if sub.collection != "" && sub.collection != ev.Collection {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Drop if the subscriber is lagging.
		}
	}
	h.mu.Unlock()
}

func (h *hub) close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		for sub := range h.subs {
			delete(h.subs, sub)
			close(sub.ch)
		}
	}
	h.mu.Unlock()
}
