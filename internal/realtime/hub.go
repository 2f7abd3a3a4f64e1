// Package realtime fans database change notifications out to in-process
// subscribers.
package realtime

import (
	"encoding/json"
	"sync"

	"resto-collect/internal/metrics"

	"github.com/rs/zerolog"
)

// EventKind is the type of row change.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
	// EventAny matches every kind.
	EventAny EventKind = "*"
)

// Event is one row change on a collection.
type Event struct {
	Collection string          `json:"table"`
	Kind       EventKind       `json:"op"`
	Record     json.RawMessage `json:"record"`
}

// Handler receives matching events. It runs on the publisher's goroutine and
// must not block.
type Handler func(Event)

// Handle identifies a subscription.
type Handle uint64

// Subscriber is the subscribe side of the hub.
type Subscriber interface {
	Subscribe(collection string, kind EventKind, fn Handler) Handle
	Unsubscribe(h Handle)
}

type subscription struct {
	collection string
	kind       EventKind
	fn         Handler
}

// Hub dispatches published events to subscribers.
type Hub struct {
	mu     sync.RWMutex
	next   Handle
	subs   map[Handle]subscription
	logger zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[Handle]subscription),
		logger: logger.With().Str("component", "realtime-hub").Logger(),
	}
}

// Subscribe registers fn for events on collection of the given kind.
func (h *Hub) Subscribe(collection string, kind EventKind, fn Handler) Handle {
	h.mu.Lock()
	h.next++
	handle := h.next
	h.subs[handle] = subscription{collection: collection, kind: kind, fn: fn}
	h.mu.Unlock()

	metrics.Realtime().Subscribed(1)
	h.logger.Debug().
		Str("collection", collection).
		Str("kind", string(kind)).
		Uint64("handle", uint64(handle)).
		Msg("subscribed")

	return handle
}

// Unsubscribe removes a subscription. Unknown handles are ignored.
func (h *Hub) Unsubscribe(handle Handle) {
	h.mu.Lock()
	_, ok := h.subs[handle]
	delete(h.subs, handle)
	h.mu.Unlock()

	if ok {
		metrics.Realtime().Subscribed(-1)
	}
}

// Publish delivers ev to every matching subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	targets := make([]Handler, 0, len(h.subs))
	for _, s := range h.subs {
		if s.collection != ev.Collection {
			continue
		}
		if s.kind != EventAny && s.kind != ev.Kind {
			continue
		}
		targets = append(targets, s.fn)
	}
	h.mu.RUnlock()

	metrics.Realtime().Event(ev.Collection, string(ev.Kind))

	for _, fn := range targets {
		fn(ev)
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
