// Package domain defines the core domain models for the chat orchestrator.
package domain

import (
	"encoding/json"
	"time"
)

// MessageType distinguishes user messages from assistant answers.
type MessageType string

const (
	MessageTypeUser MessageType = "USER"
	MessageTypeAI   MessageType = "AI"
)

// Session represents a persisted conversation thread owned by a user.
type Session struct {
	ID          int64     `json:"id"`
	SessionUUID string    `json:"session_uuid"`
	UserID      string    `json:"user_id,omitempty"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is a single entry in a session's conversation log. Messages are
// immutable once created; ordering by creation time is the conversation order.
type Message struct {
	MessageID   string      `json:"message_id"`
	SessionUUID string      `json:"session_uuid"`
	Type        MessageType `json:"type"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
}

// HSCode is a customs classification code with cached reference documents.
type HSCode struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Document is a reference document persisted against an HS code.
// Deduplicated by ContentHash.
type Document struct {
	ID          int64           `json:"id"`
	HSCodeID    int64           `json:"hscode_id"`
	Content     string          `json:"content"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	ContentHash string          `json:"content_hash"`
	CreatedAt   time.Time       `json:"created_at"`
}
