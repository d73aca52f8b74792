package domain

// ChatRequest is the inbound request for a streaming chat turn.
// UserID is empty for anonymous callers; SessionUUID is empty on the
// first message of a conversation.
type ChatRequest struct {
	UserID      string `json:"user_id,omitempty"`
	SessionUUID string `json:"session_uuid,omitempty"`
	Message     string `json:"message"`
}
