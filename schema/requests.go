package schema

// Session lifecycle.

// CreateSessionRequest describes a request to spawn a shell session.
type CreateSessionRequest struct {
	// Shell overrides the configured shell executable when non-empty.
	Shell      string
	WorkingDir string
	Rows       int
	Cols       int
}

// CreateSessionResponse reports the spawned session.
type CreateSessionResponse struct {
	SessionID SessionID
	Shell     string
}

// CloseSessionRequest describes a request to terminate a session.
type CloseSessionRequest struct {
	SessionID SessionID
}

// CloseSessionResponse reports the closed session.
type CloseSessionResponse struct {
	SessionID SessionID
}

// ListSessionsRequest describes a request to list live sessions.
type ListSessionsRequest struct{}

// ListSessionsResponse reports live session identifiers in creation order.
type ListSessionsResponse struct {
	SessionIDs []SessionID
}

// Assistant workflow.

// SubmitQueryRequest asks the assistant for a command suggestion.
type SubmitQueryRequest struct {
	SessionID SessionID
	Query     string
}

// SubmitQueryResponse acknowledges the request; the suggestion arrives
// as an AssistantEvent.
type SubmitQueryResponse struct{}

// ConfirmPendingRequest approves the pending command for execution.
type ConfirmPendingRequest struct {
	SessionID SessionID
}

// ConfirmPendingResponse reports the executed command line.
type ConfirmPendingResponse struct {
	Command string
}

// RejectPendingRequest declines the pending command.
type RejectPendingRequest struct {
	SessionID SessionID
}

// RejectPendingResponse reports the discarded command line.
type RejectPendingResponse struct {
	Command string
}

// Terminal I/O.

// SendKeystrokesRequest forwards raw input bytes to the shell.
type SendKeystrokesRequest struct {
	SessionID SessionID
	Data      []byte
}

// SendKeystrokesResponse acknowledges the write.
type SendKeystrokesResponse struct{}

// ResizeRequest propagates a window-size change to the pty.
type ResizeRequest struct {
	SessionID SessionID
	Rows      int
	Cols      int
}

// ResizeResponse acknowledges the resize.
type ResizeResponse struct{}

// Snapshots.

// GetBufferRequest asks for the current terminal buffer contents.
type GetBufferRequest struct {
	SessionID SessionID
}

// GetBufferResponse reports the display lines and cursor position.
type GetBufferResponse struct {
	Lines  []string
	Cursor Cursor
}

// GetHistoryRequest asks for the rolling output history window.
type GetHistoryRequest struct {
	SessionID SessionID
}

// GetHistoryResponse reports the retained output fragments, oldest first.
type GetHistoryResponse struct {
	Entries []string
}
