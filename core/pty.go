package core

import "context"

// Pty is the byte-level interface to a shell process bound to a
// pseudo-terminal.
type Pty interface {
	// Read blocks until output is available. It returns io.EOF once the
	// child has exited and no data remains; that is the normal
	// end-of-stream signal, not a failure.
	Read(p []byte) (n int, err error)
	// Write sends raw bytes to the child's input. Callers translate
	// outgoing line endings to the platform convention first.
	Write(p []byte) (n int, err error)
	// Resize propagates a window-size change; no-op where unsupported.
	Resize(rows, cols int) error
	// Terminate kills the child and releases the pty. Idempotent.
	Terminate() error
	// Shell reports the executable the pty is running.
	Shell() string
	// LineEnding reports the platform line terminator for this pty.
	LineEnding() string
}

// SpawnRequest describes a shell to bind to a new pseudo-terminal.
type SpawnRequest struct {
	// Shell is the executable path; empty selects the platform default.
	Shell      string
	Args       []string
	WorkingDir string
	Rows       int
	Cols       int
}

// Spawner allocates pseudo-terminals with a live child shell. At most
// one live child exists per returned Pty.
type Spawner interface {
	Spawn(ctx context.Context, req SpawnRequest) (Pty, error)
}
