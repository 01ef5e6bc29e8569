package core

import "context"

// Assistant is the text-completion backend behind suggestions and
// failure analysis. Implementations are stateless across calls and
// honor the caller's context deadline.
type Assistant interface {
	// SuggestCommand returns a single command line for the query,
	// trimmed, used verbatim without syntax validation.
	SuggestCommand(ctx context.Context, req SuggestRequest) (string, error)
	// ExplainFailure returns a problem/solution analysis of a failed
	// command for display.
	ExplainFailure(ctx context.Context, req ExplainRequest) (string, error)
}

// SuggestRequest describes a command-suggestion call.
type SuggestRequest struct {
	Query        string
	PlatformHint string
}

// ExplainRequest describes a failure-analysis call.
type ExplainRequest struct {
	Command      string
	RecentOutput []string
	PlatformHint string
}
