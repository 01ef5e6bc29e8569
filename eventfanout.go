package termsherpa

import (
	"pkt.systems/termsherpa/core"
	"pkt.systems/termsherpa/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnTerminal(event schema.TerminalEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnTerminal(event)
	}
}

func (f eventFanout) OnAssistant(event schema.AssistantEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnAssistant(event)
	}
}

func (f eventFanout) OnSession(event schema.SessionEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSession(event)
	}
}
