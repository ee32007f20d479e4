package interaction

import (
	"context"
	"sync"
	"time"
)

// EventType names a change committed by the controller.
type EventType string

const (
	EventNodeAdded      EventType = "node_added"
	EventNodeMoved      EventType = "node_moved"
	EventNodeConfigured EventType = "node_configured"
	EventNodeRemoved    EventType = "node_removed"
	EventEdgeAdded      EventType = "edge_added"
	EventEdgeRemoved    EventType = "edge_removed"
	EventEdgeRejected   EventType = "edge_rejected"
	EventModeChanged    EventType = "mode_changed"
	EventViewport       EventType = "viewport_changed"
)

// Event describes one committed change. Payload carries type-specific
// details such as the rejection reason or the new position.
type Event struct {
	Type      EventType      `json:"type"`
	Canvas    string         `json:"canvas,omitempty"`
	NodeID    string         `json:"node_id,omitempty"`
	EdgeID    string         `json:"edge_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(Event)

// EventBus fans events out to subscribers synchronously, in the order
// they were published.
type EventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]EventHandler
	order    []int
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[int]EventHandler)}
}

// Subscribe registers handler and returns a function that removes it.
func (b *EventBus) Subscribe(handler EventHandler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.handlers[id]; !ok {
			return
		}
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

// Channel delivers events on a buffered channel until ctx is done. Events
// are dropped when the buffer is full.
func (b *EventBus) Channel(ctx context.Context, bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	var mu sync.Mutex
	closed := false
	unsubscribe := b.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}
