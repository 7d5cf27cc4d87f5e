package llm

import "context"

// CompletionRequest carries a single-turn completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client produces text completions. Implementations must be safe for
// concurrent use.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
