package events

import (
	"log/slog"
	"sync"
)

// Handler receives published events. Handlers run on the publisher's
// goroutine; a panicking handler is recovered and logged and never blocks
// delivery to other handlers.
type Handler func(Event)

// Subscription identifies one registered handler for later removal.
type Subscription struct {
	kind Kind
	id   int
}

// Bus is a typed publish/subscribe event bus.
type Bus struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[Kind]map[int]Handler
}

// NewBus creates a new event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[Kind]map[int]Handler),
	}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind Kind, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]Handler)
	}
	b.subs[kind][id] = h

	return Subscription{kind: kind, id: id}
}

// Unsubscribe removes a previously registered handler. Unsubscribing twice
// is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.subs[sub.kind]; ok {
		delete(handlers, sub.id)
	}
}

// Publish delivers the event to every handler subscribed to its kind.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[ev.Kind()]))
	for _, h := range b.subs[ev.Kind()] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		b.dispatch(ev, h)
	}
}

// dispatch invokes one handler, isolating panics from the publisher and
// from the remaining handlers.
func (b *Bus) dispatch(ev Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"kind", ev.Kind(),
				"panic", r)
		}
	}()

	h(ev)
}
