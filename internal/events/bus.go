// Package events provides the in-process event bus connecting the
// simulation core to the live feed and other subscribers.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a category of event
type EventType string

const (
	// StateReprepared is emitted when the continuous-preparation tick
	// republishes a session's prepared state.
	StateReprepared EventType = "state.reprepared"
	// TrialsRecorded is emitted after a bulk run commits its records.
	TrialsRecorded EventType = "trials.recorded"
	// DirectionChanged is emitted when an apparatus orientation changes.
	DirectionChanged EventType = "direction.changed"
	// SessionCreated is emitted when a new session is registered.
	SessionCreated EventType = "session.created"
	// SessionClosed is emitted when a session is removed.
	SessionClosed EventType = "session.closed"
)

// Event is a published occurrence with typed payload
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// Handler processes a published event
type Handler func(event *Event)

// Bus is a synchronous fan-out event bus. Handlers run on the publisher's
// goroutine; slow subscribers must buffer on their side.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
	log      zerolog.Logger
}

// NewBus creates an event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers an event to all matching handlers
func (b *Bus) Publish(data EventData) {
	event := &Event{
		Type:      data.EventType(),
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	typed := b.handlers[event.Type]
	all := b.all
	b.mu.RUnlock()

	b.log.Debug().Str("event", string(event.Type)).Msg("Publishing event")
	for _, h := range typed {
		h(event)
	}
	for _, h := range all {
		h(event)
	}
}
