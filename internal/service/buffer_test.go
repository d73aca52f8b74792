package service

import (
	"strings"
	"testing"
)

func TestChunkBufferFlushesAtCapacity(t *testing.T) {
	buf := &chunkBuffer{}

	for i := 0; i < bufferFlushCount-1; i++ {
		if content, ok := buf.Add("a"); ok {
			t.Fatalf("unexpected flush at fragment %d: %q", i, content)
		}
	}
	content, ok := buf.Add("b")
	if !ok {
		t.Fatal("expected flush at capacity")
	}
	if content != strings.Repeat("a", bufferFlushCount-1)+"b" {
		t.Fatalf("unexpected flush content: %q", content)
	}

	if _, ok := buf.Flush(); ok {
		t.Fatal("buffer must be empty after a flush")
	}
}

func TestChunkBufferFlushesOnLongFragment(t *testing.T) {
	buf := &chunkBuffer{}
	buf.Add("앞부분")

	// 50 runes does not trigger; 51 does.
	if content, ok := buf.Add(strings.Repeat("가", longFragmentRunes)); ok {
		t.Fatalf("50-rune fragment must not force a flush: %q", content)
	}
	long := strings.Repeat("나", longFragmentRunes+1)
	content, ok := buf.Add(long)
	if !ok {
		t.Fatal("expected flush on long fragment")
	}
	if content != "앞부분"+strings.Repeat("가", longFragmentRunes)+long {
		t.Fatalf("unexpected flush content: %q", content)
	}
}

func TestChunkBufferFinalFlushKeepsOrder(t *testing.T) {
	buf := &chunkBuffer{}
	buf.Add("하나")
	buf.Add("둘")
	buf.Add("셋")

	content, ok := buf.Flush()
	if !ok || content != "하나둘셋" {
		t.Fatalf("unexpected final flush: %q (ok=%v)", content, ok)
	}
}
