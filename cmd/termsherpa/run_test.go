package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"pkt.systems/termsherpa"
	"pkt.systems/termsherpa/core"
	"pkt.systems/termsherpa/internal/appconfig"
	"pkt.systems/termsherpa/schema"
)

func TestRendererAppendsAndRewritesTail(t *testing.T) {
	var buf bytes.Buffer
	r := &renderer{out: &buf}

	r.terminal(schema.TerminalEvent{
		Kind: schema.TerminalDelta, FromRow: 0, Lines: []string{"$ ls"},
	})
	r.terminal(schema.TerminalEvent{
		Kind: schema.TerminalDelta, FromRow: 0, Lines: []string{"$ ls", "a.txt", "$ "},
	})
	out := buf.String()
	if !strings.Contains(out, "a.txt") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "\r\x1b[K$ ls") {
		t.Fatalf("tail row not rewritten in place: %q", out)
	}
}

func TestRendererResetClearsScreen(t *testing.T) {
	var buf bytes.Buffer
	r := &renderer{out: &buf}
	r.terminal(schema.TerminalEvent{
		Kind: schema.TerminalReset, Lines: []string{"fresh"},
	})
	if !strings.HasPrefix(buf.String(), "\x1b[2J\x1b[H") {
		t.Fatalf("output = %q", buf.String())
	}
}

type cmdStubPty struct {
	out     chan []byte
	written bytes.Buffer
}

func (p *cmdStubPty) Read(b []byte) (int, error) {
	data, ok := <-p.out
	if !ok {
		return 0, io.EOF
	}
	return copy(b, data), nil
}

func (p *cmdStubPty) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *cmdStubPty) Resize(rows, cols int) error { return nil }
func (p *cmdStubPty) Terminate() error {
	select {
	case <-p.out:
	default:
		close(p.out)
	}
	return nil
}
func (p *cmdStubPty) Shell() string      { return "/bin/stub" }
func (p *cmdStubPty) LineEnding() string { return "\n" }

type cmdStubSpawner struct{ pty *cmdStubPty }

func (s cmdStubSpawner) Spawn(ctx context.Context, req core.SpawnRequest) (core.Pty, error) {
	return s.pty, nil
}

type cmdStubAssistant struct{}

func (cmdStubAssistant) SuggestCommand(ctx context.Context, req core.SuggestRequest) (string, error) {
	return "ls -la", nil
}

func (cmdStubAssistant) ExplainFailure(ctx context.Context, req core.ExplainRequest) (string, error) {
	return "Problem: x\nSolution: y", nil
}

func TestDispatchWorkflow(t *testing.T) {
	pty := &cmdStubPty{out: make(chan []byte)}
	app, err := termsherpa.New(context.Background(), appconfig.DefaultConfig(),
		termsherpa.WithSpawner(cmdStubSpawner{pty: pty}),
		termsherpa.WithAssistant(cmdStubAssistant{}))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close(context.Background())

	resp, err := app.Service.CreateSession(context.Background(), schema.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	id := resp.SessionID
	var buf bytes.Buffer
	render := &renderer{out: &buf}

	if quit, err := dispatch(context.Background(), app, id, "?list files", render); err != nil || quit {
		t.Fatalf("query dispatch: quit=%v err=%v", quit, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := app.Service.ConfirmPending(context.Background(), schema.ConfirmPendingRequest{SessionID: id}); err == nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if got := pty.written.String(); got != "ls -la\n" {
		t.Fatalf("written = %q", got)
	}

	if quit, err := dispatch(context.Background(), app, id, "echo hi", render); err != nil || quit {
		t.Fatalf("shell dispatch: quit=%v err=%v", quit, err)
	}
	if got := pty.written.String(); !strings.HasSuffix(got, "echo hi\n") {
		t.Fatalf("written = %q", got)
	}

	if quit, _ := dispatch(context.Background(), app, id, ":q", render); !quit {
		t.Fatal("expected quit")
	}

	// Workflow verbs without a pending command report a notice error.
	if _, err := dispatch(context.Background(), app, id, ":y", render); err == nil {
		t.Fatal("expected confirm error with nothing pending")
	}
}
