package ptysession

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"pkt.systems/termsherpa/core"
)

func TestSpawnMissingBinary(t *testing.T) {
	var sp Spawner
	_, err := sp.Spawn(context.Background(), core.SpawnRequest{
		Shell: "/nonexistent/shell-binary",
		Rows:  24, Cols: 80,
	})
	if err == nil {
		t.Fatal("expected spawn error")
	}
	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("err = %T, want *SpawnError", err)
	}
	if spawnErr.Shell != "/nonexistent/shell-binary" {
		t.Errorf("shell = %q", spawnErr.Shell)
	}
}

func TestSpawnEchoRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pty not supported on windows")
	}
	var sp Spawner
	p, err := sp.Spawn(context.Background(), core.SpawnRequest{
		Shell: "/bin/sh",
		Rows:  24, Cols: 80,
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer p.Terminate()

	if _, err := io.WriteString(p, "echo round-trip-marker"+p.LineEnding()); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var out strings.Builder
	buf := make([]byte, 4096)
	for time.Now().Before(deadline) {
		n, err := p.Read(buf)
		out.Write(buf[:n])
		if strings.Contains(out.String(), "round-trip-marker") {
			return
		}
		if err != nil {
			break
		}
	}
	t.Fatalf("marker not echoed, got %q", out.String())
}

func TestReadAfterExitReturnsEOF(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pty not supported on windows")
	}
	var sp Spawner
	p, err := sp.Spawn(context.Background(), core.SpawnRequest{
		Shell: "/bin/sh",
		Rows:  24, Cols: 80,
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer p.Terminate()

	if _, err := io.WriteString(p, "exit 0"+p.LineEnding()); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 4096)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, err := p.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("read err = %v, want io.EOF", err)
			}
			return
		}
	}
	t.Fatal("read never ended after shell exit")
}

func TestTerminateIdempotent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pty not supported on windows")
	}
	var sp Spawner
	p, err := sp.Spawn(context.Background(), core.SpawnRequest{
		Shell: "/bin/sh",
		Rows:  24, Cols: 80,
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	first := p.Terminate()
	second := p.Terminate()
	if second != first {
		t.Errorf("second terminate = %v, first = %v", second, first)
	}
}

func TestDefaultShellNonEmpty(t *testing.T) {
	if DefaultShell() == "" {
		t.Fatal("empty default shell")
	}
}
