package core

import "fmt"

// BackendErrorKind classifies completion-backend failures for
// user-facing hints.
type BackendErrorKind string

const (
	// BackendErrorUnknown is an uncategorized backend failure.
	BackendErrorUnknown BackendErrorKind = "unknown"
	// BackendErrorUnavailable indicates the backend is unreachable.
	BackendErrorUnavailable BackendErrorKind = "unavailable"
	// BackendErrorUnauthorized indicates authentication failed.
	BackendErrorUnauthorized BackendErrorKind = "unauthorized"
	// BackendErrorRateLimited indicates the backend throttled the request.
	BackendErrorRateLimited BackendErrorKind = "rate_limited"
	// BackendErrorTimeout indicates the request deadline expired.
	BackendErrorTimeout BackendErrorKind = "timeout"
	// BackendErrorCanceled indicates the request was canceled.
	BackendErrorCanceled BackendErrorKind = "canceled"
	// BackendErrorBadResponse indicates an unusable backend response.
	BackendErrorBadResponse BackendErrorKind = "bad_response"
)

// BackendError wraps backend failures with a stable classification.
// Backend failures are transient: they surface a message and return
// the workflow to idle, never crash it.
type BackendError struct {
	Kind    BackendErrorKind
	Op      string
	Message string
	Err     error
}

// NewBackendError constructs a classified backend error.
func NewBackendError(kind BackendErrorKind, op string, err error) *BackendError {
	return &BackendError{Kind: kind, Op: op, Err: err}
}

func (e *BackendError) Error() string {
	if e == nil {
		return "backend error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("backend %s failed", e.Op)
	}
	return "backend error"
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
