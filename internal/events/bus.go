package events

import (
	"sync"

	"github.com/scorearb/arbiter/internal/telemetry"
)

// Handler processes an event. Returning an error logs it but does not stop
// dispatch to the remaining handlers.
type Handler func(Event) error

// Bus is a synchronous in-process event bus, kept for low-volume status
// fan-out (WS connect/disconnect, halts, game finals) where the teacher's
// original publish-to-all-subscribers shape is still the right fit. The
// hot GameEvent/MarketUpdate/ExecuteTrade/FillReport paths use Channel[T]
// instead (see channel.go) — this is the one piece spec.md requires
// redesigned away from a synchronous unbounded bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish dispatches an event to all registered handlers for its type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			telemetry.Warnf("events: handler for %s failed: %v", e.Type, err)
		}
	}
}
