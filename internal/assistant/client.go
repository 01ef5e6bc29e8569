// Package assistant implements the command-suggestion backend on top of
// an OpenAI-compatible chat-completions endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"pkt.systems/pslog"

	"pkt.systems/termsherpa/core"
)

const (
	suggestTemperature = 0.3
	suggestMaxTokens   = 200
	explainMaxTokens   = 500
)

// Config holds the backend endpoint settings.
type Config struct {
	// BaseURL is the API root, e.g. https://api.groq.com/openai/v1.
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the completion backend. It is safe for concurrent use.
type Client struct {
	http  *resty.Client
	model string
	log   pslog.Logger
}

var _ core.Assistant = (*Client)(nil)

// New builds a backend client. Returns an error when the config lacks
// an API key so callers can degrade to shell-only operation instead.
func New(cfg Config, logger pslog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("assistant: missing API key")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("assistant: missing base URL")
	}
	if cfg.Model == "" {
		return nil, errors.New("assistant: missing model")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	httpc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		httpc.SetTimeout(cfg.Timeout)
	}
	return &Client{http: httpc, model: cfg.Model, log: logger}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SuggestCommand asks the backend for a single shell command matching
// the user's request.
func (c *Client) SuggestCommand(ctx context.Context, req core.SuggestRequest) (string, error) {
	system := fmt.Sprintf(
		"You are a terminal command assistant for %s. "+
			"Reply with exactly one shell command that accomplishes the user's request. "+
			"Output only the command, no explanation, no code fences.",
		platformName(req.PlatformHint))
	text, err := c.complete(ctx, "suggest", chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Query},
		},
		Temperature: suggestTemperature,
		MaxTokens:   suggestMaxTokens,
	})
	if err != nil {
		return "", err
	}
	command := sanitizeCommand(text)
	if command == "" {
		return "", core.NewBackendError(core.BackendErrorBadResponse, "suggest",
			errors.New("empty suggestion"))
	}
	return command, nil
}

// ExplainFailure asks the backend to diagnose failing command output.
func (c *Client) ExplainFailure(ctx context.Context, req core.ExplainRequest) (string, error) {
	system := fmt.Sprintf(
		"You are a terminal troubleshooting assistant for %s. "+
			"Given a command and its output, explain briefly what went wrong and how to fix it. "+
			"Answer in two short sections labelled Problem: and Solution:.",
		platformName(req.PlatformHint))
	user := fmt.Sprintf("Command:\n%s\n\nOutput:\n%s",
		req.Command, strings.Join(req.RecentOutput, ""))
	text, err := c.complete(ctx, "explain", chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: suggestTemperature,
		MaxTokens:   explainMaxTokens,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", core.NewBackendError(core.BackendErrorBadResponse, "explain",
			errors.New("empty analysis"))
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, op string, body chatRequest) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", core.NewBackendError(classifyTransport(err), op, err)
	}
	if resp.IsError() {
		kind := classifyStatus(resp.StatusCode())
		message := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			message = out.Error.Message
		}
		c.log.Warn("backend request failed", "op", op, "status", resp.StatusCode())
		return "", core.NewBackendError(kind, op, errors.New(message))
	}
	if len(out.Choices) == 0 {
		return "", core.NewBackendError(core.BackendErrorBadResponse, op,
			errors.New("response has no choices"))
	}
	return out.Choices[0].Message.Content, nil
}

func classifyStatus(status int) core.BackendErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.BackendErrorUnauthorized
	case status == http.StatusTooManyRequests:
		return core.BackendErrorRateLimited
	case status >= 500:
		return core.BackendErrorUnavailable
	default:
		return core.BackendErrorUnknown
	}
}

func classifyTransport(err error) core.BackendErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.BackendErrorTimeout
	case errors.Is(err, context.Canceled):
		return core.BackendErrorCanceled
	default:
		return core.BackendErrorUnavailable
	}
}

// sanitizeCommand strips chatter the model sometimes wraps a command
// in: code fences, backticks, a leading "$ " prompt. Only the first
// line survives.
func sanitizeCommand(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```bash")
	text = strings.TrimPrefix(text, "```sh")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var line string
	for _, candidate := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		if strings.TrimSpace(candidate) != "" {
			line = candidate
			break
		}
	}
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "`")
	line = strings.TrimPrefix(line, "$ ")
	return strings.TrimSpace(line)
}

func platformName(hint string) string {
	if hint == "" {
		return "Linux"
	}
	return hint
}
