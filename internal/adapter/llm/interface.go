package llm

import "context"

// CompletionClient is the interface consumed by services that only need
// one-shot chat completions.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

var _ CompletionClient = (*Client)(nil)
