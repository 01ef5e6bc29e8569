// Package eventbus fans core service events out to frontend
// subscribers.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/termsherpa/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventTerminal carries decoded terminal buffer updates.
	EventTerminal EventType = "terminal"
	// EventAssistant carries assistant workflow updates.
	EventAssistant EventType = "assistant"
	// EventSession carries session lifecycle updates.
	EventSession EventType = "session"
)

// Event represents a UI-facing event emitted by the core service.
type Event struct {
	Type      EventType
	Terminal  schema.TerminalEvent
	Assistant schema.AssistantEvent
	Session   schema.SessionEvent
}

// Bus fanouts events to per-session subscribers. Subscribers to the
// empty session ID receive events for all sessions.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.SessionID]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.SessionID]map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for the session and returns a
// channel + cancel. An empty id subscribes to every session.
func (b *Bus) Subscribe(id schema.SessionID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	sessionSubs := b.subs[id]
	if sessionSubs == nil {
		sessionSubs = make(map[chan Event]struct{})
		b.subs[id] = sessionSubs
	}
	sessionSubs[ch] = struct{}{}
	count := len(sessionSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("session", id).Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		if subs := b.subs[id]; subs != nil {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subs, id)
			}
		}
		// Closed under the lock; publish also sends under the lock, so
		// a send can never race this close.
		close(ch)
		b.mu.Unlock()
		if b.log != nil {
			b.log.With("session", id).Debug("eventbus unsubscribe")
		}
	}
}

// OnTerminal publishes a terminal event.
func (b *Bus) OnTerminal(event schema.TerminalEvent) {
	b.publish(event.SessionID, Event{Type: EventTerminal, Terminal: event})
}

// OnAssistant publishes an assistant event.
func (b *Bus) OnAssistant(event schema.AssistantEvent) {
	b.publish(event.SessionID, Event{Type: EventAssistant, Assistant: event})
}

// OnSession publishes a session lifecycle event.
func (b *Bus) OnSession(event schema.SessionEvent) {
	b.publish(event.SessionID, Event{Type: EventSession, Session: event})
}

func (b *Bus) publish(id schema.SessionID, event Event) {
	if b == nil {
		return
	}
	dropped := 0
	b.mu.Lock()
	for sub := range b.subs[id] {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if id != "" {
		for sub := range b.subs[""] {
			select {
			case sub <- event:
			default:
				dropped++
			}
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("session", id).Trace("eventbus dropped", "count", dropped)
	}
}
