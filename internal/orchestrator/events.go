package orchestrator

import "sync"

// Event represents an orchestrator lifecycle event.
// Minimal and stable: name + fingerprint and optional fields via key/values.
type Event struct {
	Name        string         `json:"name"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// EventPublisher receives events from the orchestrator. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// Hub fans events out to subscribers over buffered channels. A subscriber
// that stops draining loses events rather than blocking the orchestrator.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a channel of future events and a cancel func that
// closes it. Cancel is idempotent through the map delete.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
