package schema

// SessionID identifies a shell session.
type SessionID string

// CommandState is the lifecycle state of a suggested command.
type CommandState string

const (
	// CommandProposed means the command awaits user confirmation.
	CommandProposed CommandState = "proposed"
	// CommandConfirmed means the user approved the command.
	CommandConfirmed CommandState = "confirmed"
	// CommandRejected means the user declined the command.
	CommandRejected CommandState = "rejected"
	// CommandExecuted means the command was written to the shell.
	CommandExecuted CommandState = "executed"
)

// PendingCommand is a suggested command awaiting resolution.
type PendingCommand struct {
	// Query is the natural-language request that produced the command.
	Query string
	// Command is the suggested command line, verbatim from the backend.
	Command string
	// State tracks the command lifecycle.
	State CommandState
}

// Cursor is a position in the terminal buffer.
type Cursor struct {
	Row int
	Col int
}

// OutputChunk is one pty read, tagged with a monotonic sequence number.
type OutputChunk struct {
	Seq  uint64
	Data []byte
}
