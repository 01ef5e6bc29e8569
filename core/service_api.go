package core

import (
	"context"

	"pkt.systems/termsherpa/schema"
)

// Service is the transport-agnostic API for managing shell sessions
// and the assistant workflow. Presentation layers consume it together
// with the event stream delivered through the EventSink.
type Service interface {
	CreateSession(ctx context.Context, req schema.CreateSessionRequest) (schema.CreateSessionResponse, error)
	CloseSession(ctx context.Context, req schema.CloseSessionRequest) (schema.CloseSessionResponse, error)
	ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error)
	SubmitQuery(ctx context.Context, req schema.SubmitQueryRequest) (schema.SubmitQueryResponse, error)
	ConfirmPending(ctx context.Context, req schema.ConfirmPendingRequest) (schema.ConfirmPendingResponse, error)
	RejectPending(ctx context.Context, req schema.RejectPendingRequest) (schema.RejectPendingResponse, error)
	SendKeystrokes(ctx context.Context, req schema.SendKeystrokesRequest) (schema.SendKeystrokesResponse, error)
	Resize(ctx context.Context, req schema.ResizeRequest) (schema.ResizeResponse, error)
	GetBuffer(ctx context.Context, req schema.GetBufferRequest) (schema.GetBufferResponse, error)
	GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error)
}
