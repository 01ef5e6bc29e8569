package schema

// TerminalEventKind distinguishes terminal buffer notifications.
type TerminalEventKind string

const (
	// TerminalDelta carries the redrawn lines from the first dirty row down.
	TerminalDelta TerminalEventKind = "delta"
	// TerminalReset signals a clear-screen; Lines holds the full buffer.
	TerminalReset TerminalEventKind = "reset"
)

// TerminalEvent notifies subscribers of decoded buffer changes.
type TerminalEvent struct {
	SessionID SessionID
	Kind      TerminalEventKind
	// FromRow is the index of the first line in Lines within the buffer.
	// Always 0 for reset events.
	FromRow int
	Lines   []string
	Cursor  Cursor
}

// AssistantEventKind distinguishes assistant workflow notifications.
type AssistantEventKind string

const (
	// AssistantSuggestion means a command suggestion is awaiting confirmation.
	AssistantSuggestion AssistantEventKind = "suggestion"
	// AssistantExecuted means a confirmed command was written to the shell.
	AssistantExecuted AssistantEventKind = "executed"
	// AssistantRejected means the user declined the pending command.
	AssistantRejected AssistantEventKind = "rejected"
	// AssistantAnalysisStarted means a failure was detected and analysis dispatched.
	AssistantAnalysisStarted AssistantEventKind = "analysis_started"
	// AssistantAnalysis carries the failure-analysis result text.
	AssistantAnalysis AssistantEventKind = "analysis"
	// AssistantBackendError reports a failed backend call.
	AssistantBackendError AssistantEventKind = "backend_error"
)

// AssistantEvent notifies subscribers of assistant workflow progress.
type AssistantEvent struct {
	SessionID SessionID
	Kind      AssistantEventKind
	// Query is the user request behind a suggestion, when applicable.
	Query string
	// Command is the suggested, executed, or analyzed command line.
	Command string
	// Text carries suggestion, analysis, or error detail for display.
	Text string
}

// SessionEventKind distinguishes session lifecycle notifications.
type SessionEventKind string

const (
	// SessionCreated means a shell session was spawned.
	SessionCreated SessionEventKind = "created"
	// SessionClosed means the shell exited or the session was terminated.
	SessionClosed SessionEventKind = "closed"
)

// SessionEvent notifies subscribers of session lifecycle changes.
type SessionEvent struct {
	SessionID SessionID
	Kind      SessionEventKind
	// Reason describes why a session closed ("shell exited", "terminated").
	Reason string
}
