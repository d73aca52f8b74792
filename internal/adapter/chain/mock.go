package chain

import (
	"context"

	"github.com/tradenavi/orchestrator/internal/domain"
)

// MockStreamer is a scripted Streamer for testing. It replays Chunks in
// order and then returns Err (nil for a clean stream). FailAfter > 0
// truncates the script after that many chunks before returning Err.
type MockStreamer struct {
	Chunks    []domain.ChainChunk
	Err       error
	FailAfter int

	// LastInput records the most recent input for assertions.
	LastInput domain.ChainInput
	Calls     int
}

// Ensure MockStreamer implements Streamer.
var _ Streamer = (*MockStreamer)(nil)

// Stream replays the scripted chunks through the handler.
func (m *MockStreamer) Stream(ctx context.Context, input domain.ChainInput, handler ChunkHandler) error {
	m.Calls++
	m.LastInput = input

	for i, chunk := range m.Chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if m.Err != nil && m.FailAfter > 0 && i == m.FailAfter {
			return m.Err
		}
		if err := handler(chunk); err != nil {
			return err
		}
	}
	return m.Err
}
