package core

import "pkt.systems/pslog"

// ServiceDeps captures dependencies for the core service. Spawner is
// required; a nil Assistant disables suggestions and analysis while
// the terminal keeps working.
type ServiceDeps struct {
	Spawner   Spawner
	Assistant Assistant
	EventSink EventSink
	Logger    pslog.Logger
}
