package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termsherpa/internal/term"
	"pkt.systems/termsherpa/schema"
)

// session owns one shell pty and all state derived from it. A single
// loop goroutine mutates the terminal buffer, history window, pending
// command, and last command; a dedicated reader goroutine only does
// blocking pty reads and publishes chunks. Everything else marshals
// onto the loop through calls.
type session struct {
	id    schema.SessionID
	cfg   schema.ServiceConfig
	pty   Pty
	dec   *term.Decoder
	hist  *historyWindow
	sink  EventSink
	ai    Assistant
	log   pslog.Logger
	hint  string
	onExit func(schema.SessionID)

	calls   chan sessionCall
	chunks  chan schema.OutputChunk
	readErr chan error
	stop    chan struct{}
	closed  chan struct{}

	stopOnce sync.Once

	// Loop-owned workflow state.
	pending     *schema.PendingCommand
	lastCommand string
	inputLine   []rune
	inputCR     bool
	suggestGen  uint64
}

type sessionCall struct {
	fn   func() error
	errc chan error
}

func newSession(id schema.SessionID, cfg schema.ServiceConfig, pty Pty, deps ServiceDeps, hint string, onExit func(schema.SessionID)) *session {
	log := deps.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &session{
		id:      id,
		cfg:     cfg,
		pty:     pty,
		dec:     term.NewDecoder(term.NewBuffer(cfg.BufferMaxLines)),
		hist:    newHistoryWindow(cfg.HistoryMaxEntries, cfg.HistoryRetainEntries),
		sink:    deps.EventSink,
		ai:      deps.Assistant,
		log:     log.With("session", id),
		hint:    hint,
		onExit:  onExit,
		calls:   make(chan sessionCall),
		chunks:  make(chan schema.OutputChunk, 256),
		readErr: make(chan error, 1),
		stop:    make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

func (s *session) start() {
	go s.readLoop()
	go s.loop()
}

// readLoop performs blocking pty reads and publishes sequence-numbered
// chunks. It holds no locks and exits on end of stream or terminate.
func (s *session) readLoop() {
	var seq uint64
	buf := make([]byte, 32*1024)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			seq++
			chunk := schema.OutputChunk{Seq: seq, Data: append([]byte(nil), buf[:n]...)}
			select {
			case s.chunks <- chunk:
			case <-s.closed:
				return
			}
		}
		if err != nil {
			select {
			case s.readErr <- err:
			case <-s.closed:
			}
			return
		}
	}
}

func (s *session) loop() {
	ticker := time.NewTicker(s.cfg.DrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.drain()
		case c := <-s.calls:
			c.errc <- c.fn()
		case err := <-s.readErr:
			s.drain()
			s.finishStream()
			reason := "shell exited"
			if err != nil && !errors.Is(err, io.EOF) {
				s.log.Warn("session read failed", "err", err)
				reason = "read failed"
			} else {
				s.log.Info("session stream ended")
			}
			s.shutdown(reason)
			return
		case <-s.stop:
			s.drain()
			s.finishStream()
			s.shutdown("terminated")
			return
		}
	}
}

// do runs fn on the session loop and returns its result.
func (s *session) do(ctx context.Context, fn func() error) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	c := sessionCall{fn: fn, errc: make(chan error, 1)}
	select {
	case s.calls <- c:
	case <-s.closed:
		return schema.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.errc:
		return err
	case <-s.closed:
		return schema.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post marshals an asynchronous completion back onto the loop,
// dropping it if the session closed in the meantime.
func (s *session) post(fn func()) {
	c := sessionCall{fn: func() error { fn(); return nil }, errc: make(chan error, 1)}
	select {
	case s.calls <- c:
		<-c.errc
	case <-s.closed:
	}
}

func (s *session) close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *session) shutdown(reason string) {
	_ = s.pty.Terminate()
	close(s.closed)
	if s.onExit != nil {
		s.onExit(s.id)
	}
	s.emitSession(schema.SessionEvent{SessionID: s.id, Kind: schema.SessionClosed, Reason: reason})
	s.log.Info("session closed", "reason", reason)
}

// drain dequeues all pending chunks, decodes them, updates the history
// window, runs the failure heuristic, then notifies subscribers once.
func (s *session) drain() {
	changed := false
	for {
		select {
		case chunk := <-s.chunks:
			changed = true
			text := s.dec.Feed(chunk.Data)
			if text != "" {
				s.hist.Append(text)
				s.checkFailure(text)
			}
		default:
			if changed {
				s.emitTerminal()
			}
			return
		}
	}
}

// finishStream flushes decoder state held across chunk boundaries.
func (s *session) finishStream() {
	if text := s.dec.Flush(); text != "" {
		s.hist.Append(text)
	}
	s.emitTerminal()
}

func (s *session) emitTerminal() {
	delta, ok := s.dec.Buffer().TakeDelta()
	if !ok || s.sink == nil {
		return
	}
	kind := schema.TerminalDelta
	if delta.Reset {
		kind = schema.TerminalReset
	}
	s.sink.OnTerminal(schema.TerminalEvent{
		SessionID: s.id,
		Kind:      kind,
		FromRow:   delta.FromRow,
		Lines:     delta.Lines,
		Cursor:    schema.Cursor{Row: delta.CursorRow, Col: delta.CursorCol},
	})
}

func (s *session) emitAssistant(event schema.AssistantEvent) {
	if s.sink == nil {
		return
	}
	event.SessionID = s.id
	s.sink.OnAssistant(event)
}

func (s *session) emitSession(event schema.SessionEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnSession(event)
}

// checkFailure is the error signal: it fires when the last command is
// set and the chunk text contains a failure idiom, dispatches analysis
// once, and clears the last command so the same failure cannot
// re-trigger.
func (s *session) checkFailure(text string) {
	if s.lastCommand == "" || !containsFailureIdiom(text) {
		return
	}
	if s.ai == nil {
		s.log.Debug("failure detected without assistant backend", "command", s.lastCommand)
		return
	}
	req := analysisRequest{
		Command:      s.lastCommand,
		RecentOutput: s.hist.Tail(s.cfg.AnalysisTailEntries),
	}
	s.lastCommand = ""
	s.log.Info("failure detected", "command", req.Command)
	s.emitAssistant(schema.AssistantEvent{Kind: schema.AssistantAnalysisStarted, Command: req.Command})
	go s.analyze(req)
}

func (s *session) analyze(req analysisRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackendTimeout)
	defer cancel()
	text, err := s.ai.ExplainFailure(ctx, ExplainRequest{
		Command:      req.Command,
		RecentOutput: req.RecentOutput,
		PlatformHint: s.hint,
	})
	s.post(func() {
		if err != nil {
			s.log.Warn("failure analysis failed", "command", req.Command, "err", err)
			s.emitAssistant(schema.AssistantEvent{
				Kind:    schema.AssistantBackendError,
				Command: req.Command,
				Text:    err.Error(),
			})
			return
		}
		s.emitAssistant(schema.AssistantEvent{
			Kind:    schema.AssistantAnalysis,
			Command: req.Command,
			Text:    text,
		})
	})
}

// submitQuery starts a suggestion request. Loop-owned: a new query
// discards any unresolved pending command and supersedes an in-flight
// request; the superseded result is dropped when it arrives.
func (s *session) submitQuery(query string) error {
	if s.ai == nil {
		return schema.ErrAssistantUnavailable
	}
	s.pending = nil
	s.suggestGen++
	gen := s.suggestGen
	s.log.Info("suggestion requested", "query", query)
	go s.suggest(gen, query)
	return nil
}

func (s *session) suggest(gen uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BackendTimeout)
	defer cancel()
	command, err := s.ai.SuggestCommand(ctx, SuggestRequest{Query: query, PlatformHint: s.hint})
	s.post(func() {
		if gen != s.suggestGen {
			s.log.Debug("stale suggestion discarded", "query", query)
			return
		}
		if err != nil {
			s.log.Warn("suggestion failed", "query", query, "err", err)
			s.emitAssistant(schema.AssistantEvent{
				Kind:  schema.AssistantBackendError,
				Query: query,
				Text:  err.Error(),
			})
			return
		}
		s.pending = &schema.PendingCommand{
			Query:   query,
			Command: command,
			State:   schema.CommandProposed,
		}
		s.log.Info("suggestion proposed", "query", query, "command", command)
		s.emitAssistant(schema.AssistantEvent{
			Kind:    schema.AssistantSuggestion,
			Query:   query,
			Command: command,
			Text:    command,
		})
	})
}

// confirmPending executes the proposed command: the only transition
// that writes a command line to the pty.
func (s *session) confirmPending() (string, error) {
	if s.pending == nil || s.pending.State != schema.CommandProposed {
		return "", schema.ErrNoPendingCommand
	}
	command := s.pending.Command
	s.pending.State = schema.CommandConfirmed
	if _, err := io.WriteString(s.pty, command+s.pty.LineEnding()); err != nil {
		s.pending = nil
		return "", fmt.Errorf("write command: %w", err)
	}
	s.pending.State = schema.CommandExecuted
	s.pending = nil
	s.lastCommand = command
	s.hist.Clear()
	s.log.Info("command executed", "command", command)
	s.emitAssistant(schema.AssistantEvent{Kind: schema.AssistantExecuted, Command: command})
	return command, nil
}

func (s *session) rejectPending() (string, error) {
	if s.pending == nil || s.pending.State != schema.CommandProposed {
		return "", schema.ErrNoPendingCommand
	}
	command := s.pending.Command
	s.pending.State = schema.CommandRejected
	s.pending = nil
	s.log.Info("command rejected", "command", command)
	s.emitAssistant(schema.AssistantEvent{Kind: schema.AssistantRejected, Command: command})
	return command, nil
}

// sendKeystrokes forwards raw input to the shell and mirrors the line
// the user is typing: on enter the assembled line becomes the last
// command and the history window restarts, so failures of hand-typed
// commands get analyzed too.
func (s *session) sendKeystrokes(data []byte) error {
	if _, err := s.pty.Write(data); err != nil {
		return fmt.Errorf("write keystrokes: %w", err)
	}
	for _, b := range data {
		afterCR := s.inputCR
		s.inputCR = false
		switch {
		case b == '\r':
			s.submitTypedLine()
			s.inputCR = true
		case b == '\n':
			// A "\r\n" pair is one line break; the "\r" already
			// submitted the line.
			if !afterCR {
				s.submitTypedLine()
			}
		case b == 0x08 || b == 0x7f:
			if len(s.inputLine) > 0 {
				s.inputLine = s.inputLine[:len(s.inputLine)-1]
			}
		case b >= 0x20:
			s.inputLine = append(s.inputLine, rune(b))
		}
	}
	return nil
}

func (s *session) submitTypedLine() {
	line := strings.TrimSpace(string(s.inputLine))
	s.inputLine = s.inputLine[:0]
	s.lastCommand = line
	s.hist.Clear()
}

func (s *session) resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return schema.ErrInvalidDimensions
	}
	return s.pty.Resize(rows, cols)
}
