package core

import "pkt.systems/termsherpa/schema"

// EventSink receives terminal, assistant, and session events from the
// core service. Callbacks run on the owning session's loop and must
// not block.
type EventSink interface {
	OnTerminal(event schema.TerminalEvent)
	OnAssistant(event schema.AssistantEvent)
	OnSession(event schema.SessionEvent)
}
