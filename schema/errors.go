package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery indicates the assistant query was empty.
	ErrEmptyQuery = errors.New("empty query")
	// ErrSessionNotFound indicates a requested session could not be found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed indicates the session's shell has exited or was closed.
	ErrSessionClosed = errors.New("session closed")
	// ErrNoPendingCommand indicates there is no suggestion awaiting confirmation.
	ErrNoPendingCommand = errors.New("no pending command")
	// ErrAssistantUnavailable indicates no completion backend is configured.
	ErrAssistantUnavailable = errors.New("assistant backend not configured")
	// ErrInvalidDimensions indicates non-positive terminal dimensions.
	ErrInvalidDimensions = errors.New("invalid terminal dimensions")
)
