package domain

import "encoding/json"

// EventType identifies a stream event variant.
type EventType string

const (
	EventTypeSessionID EventType = "session_id"
	EventTypeToken     EventType = "token"
	EventTypeError     EventType = "error"
	EventTypeComplete  EventType = "complete"
)

// Error codes carried by error events.
const (
	ErrorCodeChainStreaming = "CHAIN_STREAMING_ERROR"
	ErrorCodeChatService    = "CHAT_SERVICE_ERROR"
)

// StreamEvent is the tagged union emitted to the caller over SSE.
// Exactly one of the payload pointers is set, matching Type.
type StreamEvent struct {
	Type      EventType
	SessionID *SessionIDData
	Token     *TokenData
	Error     *ErrorData
	Complete  *CompleteData
}

// SessionIDData is the payload of a session_id event. Emitted at most
// once per stream, first, and only for newly created sessions.
type SessionIDData struct {
	SessionUUID string `json:"session_uuid"`
}

// TokenData is the payload of a token event: one flushed batch of
// answer fragments, in arrival order.
type TokenData struct {
	Content string `json:"content"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// CompleteData is the payload of the terminal complete event.
type CompleteData struct {
	Message    string `json:"message"`
	TokenCount int    `json:"token_count"`
	Source     string `json:"source"`
}

// Data returns the payload corresponding to the event's Type.
func (e StreamEvent) Data() any {
	switch e.Type {
	case EventTypeSessionID:
		return e.SessionID
	case EventTypeToken:
		return e.Token
	case EventTypeError:
		return e.Error
	case EventTypeComplete:
		return e.Complete
	}
	return nil
}

// MarshalJSON serializes the event in its wire shape:
// {"type": "...", "data": {...}}.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type EventType `json:"type"`
		Data any       `json:"data"`
	}{Type: e.Type, Data: e.Data()})
}

// NewSessionIDEvent creates a session_id event.
func NewSessionIDEvent(sessionUUID string) StreamEvent {
	return StreamEvent{Type: EventTypeSessionID, SessionID: &SessionIDData{SessionUUID: sessionUUID}}
}

// NewTokenEvent creates a token event.
func NewTokenEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTypeToken, Token: &TokenData{Content: content}}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(message, code string) StreamEvent {
	return StreamEvent{Type: EventTypeError, Error: &ErrorData{Message: message, ErrorCode: code}}
}

// NewCompleteEvent creates the terminal complete event.
func NewCompleteEvent(message string, tokenCount int, source string) StreamEvent {
	return StreamEvent{Type: EventTypeComplete, Complete: &CompleteData{Message: message, TokenCount: tokenCount, Source: source}}
}
