package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pkt.systems/termsherpa/core"
)

func chatHandler(t *testing.T, reply string, capture *chatRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{BaseURL: "http://x", Model: "m"}, nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestSuggestCommand(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, chatHandler(t, "ls -la", &captured))

	command, err := client.SuggestCommand(context.Background(), core.SuggestRequest{
		Query:        "list all files",
		PlatformHint: "Linux",
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if command != "ls -la" {
		t.Errorf("command = %q", command)
	}
	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Temperature != suggestTemperature {
		t.Errorf("temperature = %v", captured.Temperature)
	}
	if captured.MaxTokens != suggestMaxTokens {
		t.Errorf("max_tokens = %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "list all files" {
		t.Errorf("messages = %+v", captured.Messages)
	}
}

func TestSuggestStripsChatter(t *testing.T) {
	cases := map[string]string{
		"```bash\nls -la\n```":   "ls -la",
		"`df -h`":                "df -h",
		"$ du -sh .":             "du -sh .",
		"  git status  ":         "git status",
		"\nfind . -name '*.go'":  "find . -name '*.go'",
		"ls -la\nThis lists all": "ls -la",
	}
	for reply, want := range cases {
		client := newTestClient(t, chatHandler(t, reply, nil))
		command, err := client.SuggestCommand(context.Background(), core.SuggestRequest{Query: "q"})
		if err != nil {
			t.Errorf("reply %q: %v", reply, err)
			continue
		}
		if command != want {
			t.Errorf("reply %q: command = %q, want %q", reply, command, want)
		}
	}
}

func TestExplainFailure(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, chatHandler(t, "Problem: typo\nSolution: fix it", &captured))

	text, err := client.ExplainFailure(context.Background(), core.ExplainRequest{
		Command:      "gti status",
		RecentOutput: []string{"gti: command not found\n"},
		PlatformHint: "Linux",
	})
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if text != "Problem: typo\nSolution: fix it" {
		t.Errorf("text = %q", text)
	}
	if captured.MaxTokens != explainMaxTokens {
		t.Errorf("max_tokens = %d", captured.MaxTokens)
	}
	user := captured.Messages[1].Content
	if !strings.Contains(user, "gti status") || !strings.Contains(user, "command not found") {
		t.Errorf("user message = %q", user)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   core.BackendErrorKind
	}{
		{http.StatusUnauthorized, core.BackendErrorUnauthorized},
		{http.StatusForbidden, core.BackendErrorUnauthorized},
		{http.StatusTooManyRequests, core.BackendErrorRateLimited},
		{http.StatusInternalServerError, core.BackendErrorUnavailable},
		{http.StatusBadRequest, core.BackendErrorUnknown},
	}
	for _, tc := range cases {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "nope"},
			})
		}))
		_, err := client.SuggestCommand(context.Background(), core.SuggestRequest{Query: "q"})
		var backendErr *core.BackendError
		if !errors.As(err, &backendErr) {
			t.Fatalf("status %d: err = %T (%v)", tc.status, err, err)
		}
		if backendErr.Kind != tc.kind {
			t.Errorf("status %d: kind = %q, want %q", tc.status, backendErr.Kind, tc.kind)
		}
	}
}

func TestEmptyChoicesIsBadResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	_, err := client.SuggestCommand(context.Background(), core.SuggestRequest{Query: "q"})
	var backendErr *core.BackendError
	if !errors.As(err, &backendErr) || backendErr.Kind != core.BackendErrorBadResponse {
		t.Fatalf("err = %v", err)
	}
}

func TestContextDeadlineIsTimeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unblock even if the aborted request's context lingers, so
		// server.Close in cleanup does not wait on this handler.
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.SuggestCommand(ctx, core.SuggestRequest{Query: "q"})
	var backendErr *core.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("err = %T (%v)", err, err)
	}
	if backendErr.Kind != core.BackendErrorTimeout {
		t.Errorf("kind = %q, want timeout", backendErr.Kind)
	}
}
