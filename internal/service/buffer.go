package service

import (
	"strings"
	"unicode/utf8"
)

const (
	// bufferFlushCount is the fragment count that triggers a flush.
	bufferFlushCount = 10
	// longFragmentRunes flushes immediately when a single fragment
	// exceeds it.
	longFragmentRunes = 50
)

// chunkBuffer batches answer fragments into token events so tiny chain
// chunks do not each become an SSE frame. Concatenation order is the
// arrival order.
type chunkBuffer struct {
	fragments []string
}

// Add appends a fragment and returns the joined batch when the buffer
// reached capacity or the fragment itself is long.
func (b *chunkBuffer) Add(fragment string) (string, bool) {
	b.fragments = append(b.fragments, fragment)
	if len(b.fragments) >= bufferFlushCount || utf8.RuneCountInString(fragment) > longFragmentRunes {
		return b.Flush()
	}
	return "", false
}

// Flush drains whatever is buffered. ok is false when there was nothing.
func (b *chunkBuffer) Flush() (content string, ok bool) {
	if len(b.fragments) == 0 {
		return "", false
	}
	content = strings.Join(b.fragments, "")
	b.fragments = b.fragments[:0]
	return content, true
}
