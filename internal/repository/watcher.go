package repository

import "sync"

// watchHub fans out change signals to list watchers. Signals are
// coalescing: a subscriber that has not drained its pending signal will not
// queue another, it simply re-queries once.
type watchHub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[int]chan struct{})}
}

func (h *watchHub) subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *watchHub) notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
