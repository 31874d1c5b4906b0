// internal/realtime/hub.go
package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscriber receives serialized public snapshots for one wishlist.
type Subscriber interface {
	Send(data []byte) error
}

// Publisher is the narrow interface mutation services depend on, so the
// in-process hub can later be swapped for a distributed pub/sub backend
// without touching mutation logic.
type Publisher interface {
	Publish(slug string, data []byte)
}

// Hub keeps the per-slug subscriber sets. It is the only in-process shared
// mutable state in the service; every set mutation happens under one mutex.
// Sends happen outside the lock on a copied subscriber list.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[Subscriber]struct{}
}

// NewHub creates an empty subscription registry.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[Subscriber]struct{}),
	}
}

// Subscribe registers a subscriber for a wishlist slug. New subscribers get
// no replay; the client fetches the current snapshot separately.
func (h *Hub) Subscribe(slug string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[slug]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.subscribers[slug] = set
	}
	set[sub] = struct{}{}
}

// Unsubscribe drops a subscriber. Safe to call for a subscriber that was
// already removed by a failed send.
func (h *Hub) Unsubscribe(slug string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(slug, sub)
}

// Publish sends data to every subscriber of the slug. Best-effort: a failed
// send removes that subscriber and does not affect the others, and the caller
// never learns about delivery problems.
func (h *Hub) Publish(slug string, data []byte) {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subscribers[slug]))
	for sub := range h.subscribers[slug] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	var failed []Subscriber
	for _, sub := range subs {
		if err := sub.Send(data); err != nil {
			logrus.WithField("slug", slug).WithError(err).Debug("dropping websocket subscriber after failed send")
			failed = append(failed, sub)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, sub := range failed {
			h.remove(slug, sub)
		}
		h.mu.Unlock()
	}
}

// SubscriberCount reports how many subscribers a slug currently has.
func (h *Hub) SubscriberCount(slug string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[slug])
}

// remove must be called with the mutex held.
func (h *Hub) remove(slug string, sub Subscriber) {
	set, ok := h.subscribers[slug]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, slug)
	}
}
