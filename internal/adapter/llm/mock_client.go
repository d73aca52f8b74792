package llm

import "context"

// MockClient is a configurable in-memory completion client for tests.
type MockClient struct {
	Response string
	Err      error

	// LastRequest records the most recent request for assertions.
	LastRequest *ChatCompletionRequest
	Calls       int
}

var _ CompletionClient = (*MockClient)(nil)

func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.Calls++
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return &ChatCompletionResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      &ChatMessage{Role: "assistant", Content: m.Response},
				FinishReason: "stop",
			},
		},
	}, nil
}
