// Package voice adapts the opaque realtime voice transport into typed events.
// The transport itself (session start/stop/mute, audio) lives entirely in the
// provider; this side only consumes its event callbacks.
package voice

import (
	"sync"

	"mentora/backend/models"
)

type EventType string

const (
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventMessage     EventType = "message"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventError       EventType = "error"
)

// Event is one provider callback, normalized. Transcript and Role are set for
// EventMessage; Final distinguishes interim partials from authoritative
// transcript segments. Err is set for EventError.
type Event struct {
	Type        EventType
	CompanionID string
	UserID      string
	SessionID   string
	Role        models.ChatRole
	Transcript  string
	Final       bool
	Err         string
}

type Handler func(Event)

// Dispatcher fans events out to subscribers. Unsubscribing through the token
// guarantees no handler outlives its owner.
type Dispatcher struct {
	mu   sync.Mutex
	subs map[int]Handler
	next int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its unsubscribe token.
func (d *Dispatcher) Subscribe(h Handler) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.subs[d.next] = h
	return d.next
}

func (d *Dispatcher) Unsubscribe(token int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, token)
}

// Publish delivers an event to every current subscriber. Handlers run outside
// the lock so a subscriber may unsubscribe from within its handler.
func (d *Dispatcher) Publish(event Event) {
	d.mu.Lock()
	handlers := make([]Handler, 0, len(d.subs))
	for _, h := range d.subs {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}
