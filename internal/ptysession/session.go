// Package ptysession spawns interactive shells behind a pseudo-terminal
// and exposes them through the core.Pty contract.
package ptysession

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"pkt.systems/termsherpa/core"
)

// SpawnError reports a failure to start the shell process.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Spawner starts shells with creack/pty. The zero value is ready to use.
type Spawner struct{}

var _ core.Spawner = (*Spawner)(nil)

// Spawn starts the requested shell attached to a new pty set to the
// requested size. An empty Shell falls back to DefaultShell.
func (Spawner) Spawn(ctx context.Context, req core.SpawnRequest) (core.Pty, error) {
	shell := req.Shell
	if shell == "" {
		shell = DefaultShell()
	}
	cmd := exec.CommandContext(ctx, shell, req.Args...)
	cmd.Dir = req.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: clampDim(req.Rows),
		Cols: clampDim(req.Cols),
	})
	if err != nil {
		return nil, &SpawnError{Shell: shell, Err: err}
	}
	s := &Session{shell: shell, cmd: cmd, ptmx: ptmx}
	go s.reap()
	return s, nil
}

// Session is one running shell behind a pty.
type Session struct {
	shell string
	cmd   *exec.Cmd
	ptmx  *os.File

	termOnce sync.Once
	termErr  error
}

var _ core.Pty = (*Session)(nil)

// Read returns shell output. When the child exits the pty master
// reports EIO on Linux; that is translated to io.EOF so callers see a
// normal end of stream.
func (s *Session) Read(b []byte) (int, error) {
	n, err := s.ptmx.Read(b)
	if err != nil && isClosedPty(err) {
		return n, io.EOF
	}
	return n, err
}

func (s *Session) Write(b []byte) (int, error) {
	return s.ptmx.Write(b)
}

// Resize propagates a window-size change to the pty slave.
func (s *Session) Resize(rows, cols int) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: clampDim(rows),
		Cols: clampDim(cols),
	})
}

// Terminate kills the child and closes the pty master. Safe to call
// more than once and after the child has already exited.
func (s *Session) Terminate() error {
	s.termOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		s.termErr = s.ptmx.Close()
	})
	return s.termErr
}

// Shell returns the executable this session was spawned with.
func (s *Session) Shell() string { return s.shell }

// LineEnding returns the byte sequence terminating a submitted command
// line for this platform's shells.
func (s *Session) LineEnding() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// reap waits for the child so it does not linger as a zombie.
func (s *Session) reap() {
	_ = s.cmd.Wait()
}

// DefaultShell picks the shell to run when none is configured:
// $SHELL when set, otherwise a platform default.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/bash"
}

func clampDim(v int) uint16 {
	if v <= 0 || v > 0xffff {
		return 0
	}
	return uint16(v)
}

// isClosedPty reports whether a read error means the slave side is gone
// because the child exited.
func isClosedPty(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return true
	}
	return errors.Is(err, syscall.EIO)
}
