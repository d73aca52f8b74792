// Package chain provides the HTTP client for the external chain driver,
// which turns a question plus chat history into a streamed answer.
package chain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tradenavi/orchestrator/internal/domain"
)

// ChunkHandler is called for each structured chunk from the driver.
// Return an error to abort consumption.
type ChunkHandler func(chunk domain.ChainChunk) error

// Streamer is the contract the orchestrator depends on: a lazy, finite,
// one-pass sequence of chunks delivered through the handler.
type Streamer interface {
	Stream(ctx context.Context, input domain.ChainInput, handler ChunkHandler) error
}

// Client is an HTTP client for the chain driver.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure Client implements Streamer.
var _ Streamer = (*Client)(nil)

// NewClient creates a new chain driver client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout, // Long timeout for streaming
		},
	}
}

// Stream calls the driver's /chain/stream endpoint and delivers SSE
// chunks to the handler until the stream ends, the handler fails, or
// ctx is cancelled.
func (c *Client) Stream(ctx context.Context, input domain.ChainInput, handler ChunkHandler) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chain/stream", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to invoke chain driver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chain driver returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return parseSSE(resp.Body, handler)
}

// parseSSE parses an SSE stream and calls the handler for each data frame.
func parseSSE(reader io.Reader, handler ChunkHandler) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// Ignore comments (lines starting with :), event names, and blank
		// separators; only data frames carry chunks.
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk domain.ChainChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to parse chain chunk: %w", err)
		}
		if err := handler(chunk); err != nil {
			return err
		}
	}

	return scanner.Err()
}
