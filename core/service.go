package core

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/termsherpa/schema"
)

// service implements the core service behavior.
type service struct {
	cfg  schema.ServiceConfig
	deps ServiceDeps
	log  pslog.Logger
	hint string

	mu       sync.Mutex
	sessions map[schema.SessionID]*session
	order    []schema.SessionID
}

// NewService constructs the core service implementation.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Spawner == nil {
		return nil, errors.New("pty spawner required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	deps.Logger = logger
	hint := cfg.PlatformHint
	if hint == "" {
		hint = platformHint()
	}
	return &service{
		cfg:      cfg,
		deps:     deps,
		log:      logger,
		hint:     hint,
		sessions: make(map[schema.SessionID]*session),
	}, nil
}

// platformHint names the host OS the way assistant prompts expect.
func platformHint() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	default:
		return "Linux"
	}
}

func (s *service) CreateSession(ctx context.Context, req schema.CreateSessionRequest) (schema.CreateSessionResponse, error) {
	if ctx == nil {
		return schema.CreateSessionResponse{}, errors.New("missing context")
	}
	shell := strings.TrimSpace(req.Shell)
	if shell == "" {
		shell = s.cfg.Shell
	}
	rows, cols := req.Rows, req.Cols
	if rows <= 0 {
		rows = s.cfg.Rows
	}
	if cols <= 0 {
		cols = s.cfg.Cols
	}
	workingDir := req.WorkingDir
	if workingDir == "" {
		workingDir = s.cfg.WorkingDir
	}

	pty, err := s.deps.Spawner.Spawn(ctx, SpawnRequest{
		Shell:      shell,
		Args:       s.cfg.ShellArgs,
		WorkingDir: workingDir,
		Rows:       rows,
		Cols:       cols,
	})
	if err != nil {
		s.log.Warn("session spawn failed", "shell", shell, "err", err)
		return schema.CreateSessionResponse{}, err
	}

	id := schema.SessionID(newID())
	sess := newSession(id, s.cfg, pty, s.deps, s.hint, s.removeSession)

	s.mu.Lock()
	s.sessions[id] = sess
	s.order = append(s.order, id)
	s.mu.Unlock()

	sess.start()
	sess.emitSession(schema.SessionEvent{SessionID: id, Kind: schema.SessionCreated})
	s.log.Info("session created", "session", id, "shell", pty.Shell(), "rows", rows, "cols", cols)

	return schema.CreateSessionResponse{SessionID: id, Shell: pty.Shell()}, nil
}

func (s *service) CloseSession(ctx context.Context, req schema.CloseSessionRequest) (schema.CloseSessionResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.CloseSessionResponse{}, err
	}
	sess.close()
	return schema.CloseSessionResponse{SessionID: req.SessionID}, nil
}

func (s *service) ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]schema.SessionID, 0, len(s.order))
	for _, id := range s.order {
		if _, ok := s.sessions[id]; ok {
			ids = append(ids, id)
		}
	}
	return schema.ListSessionsResponse{SessionIDs: ids}, nil
}

func (s *service) SubmitQuery(ctx context.Context, req schema.SubmitQueryRequest) (schema.SubmitQueryResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return schema.SubmitQueryResponse{}, schema.ErrEmptyQuery
	}
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.SubmitQueryResponse{}, err
	}
	err = sess.do(ctx, func() error { return sess.submitQuery(query) })
	return schema.SubmitQueryResponse{}, err
}

func (s *service) ConfirmPending(ctx context.Context, req schema.ConfirmPendingRequest) (schema.ConfirmPendingResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.ConfirmPendingResponse{}, err
	}
	var command string
	err = sess.do(ctx, func() error {
		var confirmErr error
		command, confirmErr = sess.confirmPending()
		return confirmErr
	})
	return schema.ConfirmPendingResponse{Command: command}, err
}

func (s *service) RejectPending(ctx context.Context, req schema.RejectPendingRequest) (schema.RejectPendingResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.RejectPendingResponse{}, err
	}
	var command string
	err = sess.do(ctx, func() error {
		var rejectErr error
		command, rejectErr = sess.rejectPending()
		return rejectErr
	})
	return schema.RejectPendingResponse{Command: command}, err
}

func (s *service) SendKeystrokes(ctx context.Context, req schema.SendKeystrokesRequest) (schema.SendKeystrokesResponse, error) {
	if len(req.Data) == 0 {
		return schema.SendKeystrokesResponse{}, nil
	}
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.SendKeystrokesResponse{}, err
	}
	data := append([]byte(nil), req.Data...)
	err = sess.do(ctx, func() error { return sess.sendKeystrokes(data) })
	return schema.SendKeystrokesResponse{}, err
}

func (s *service) Resize(ctx context.Context, req schema.ResizeRequest) (schema.ResizeResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.ResizeResponse{}, err
	}
	err = sess.do(ctx, func() error { return sess.resize(req.Rows, req.Cols) })
	return schema.ResizeResponse{}, err
}

func (s *service) GetBuffer(ctx context.Context, req schema.GetBufferRequest) (schema.GetBufferResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.GetBufferResponse{}, err
	}
	var resp schema.GetBufferResponse
	err = sess.do(ctx, func() error {
		resp.Lines = sess.dec.Buffer().Lines()
		row, col := sess.dec.Buffer().Cursor()
		resp.Cursor = schema.Cursor{Row: row, Col: col}
		return nil
	})
	return resp, err
}

func (s *service) GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error) {
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return schema.GetHistoryResponse{}, err
	}
	var resp schema.GetHistoryResponse
	err = sess.do(ctx, func() error {
		resp.Entries = sess.hist.Entries()
		return nil
	})
	return resp, err
}

func (s *service) lookup(id schema.SessionID) (*session, error) {
	if id == "" {
		return nil, schema.ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	if sess == nil {
		return nil, schema.ErrSessionNotFound
	}
	return sess, nil
}

func (s *service) removeSession(id schema.SessionID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
