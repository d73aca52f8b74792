package domain

import "encoding/json"

// ChainSourceDB marks a chain document that was already served from the
// local database; such documents are never re-persisted.
const ChainSourceDB = "db"

// ChainSourceRAGOrWeb marks a final chunk whose answer came from the
// RAG/web-search fallback. Qualifying documents are persisted by a
// background job.
const ChainSourceRAGOrWeb = "rag_or_web"

// ChainDocument is a reference document attached to the final chain chunk.
type ChainDocument struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ChainChunk is one structured record from the chain driver's stream.
// Answer carries an incremental text fragment (may be empty); Source and
// Docs are meaningful on the final chunk only.
type ChainChunk struct {
	Answer string          `json:"answer,omitempty"`
	Source string          `json:"source,omitempty"`
	Docs   []ChainDocument `json:"docs,omitempty"`
}

// ChainInput is the request sent to the chain driver.
type ChainInput struct {
	Question    string    `json:"question"`
	ChatHistory []Message `json:"chat_history"`
}

// MetadataJSON renders a document's metadata as JSON for persistence.
func (d ChainDocument) MetadataJSON() json.RawMessage {
	if len(d.Metadata) == 0 {
		return json.RawMessage(`{}`)
	}
	data, err := json.Marshal(d.Metadata)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
