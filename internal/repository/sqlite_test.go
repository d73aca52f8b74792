package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tradenavi/orchestrator/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	session := &domain.Session{
		SessionUUID: "2b7ae9b0-1111-4222-8333-444455556666",
		UserID:      "u1",
		CreatedAt:   time.Now(),
	}
	if err := tx.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID == 0 {
		t.Fatalf("expected generated session ID")
	}

	got, err := tx.GetSessionByUUID(ctx, "u1", session.SessionUUID)
	if err != nil {
		t.Fatalf("GetSessionByUUID failed: %v", err)
	}
	if got.UserID != "u1" || got.Title != "" {
		t.Fatalf("unexpected session: %+v", got)
	}

	// Lookup is scoped to the owning user.
	if _, err := tx.GetSessionByUUID(ctx, "other", session.SessionUUID); err == nil {
		t.Fatalf("expected lookup for wrong user to fail")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Visible outside the transaction after commit.
	if _, err := store.GetSessionByUUID(ctx, "u1", session.SessionUUID); err != nil {
		t.Fatalf("session not visible after commit: %v", err)
	}
}

func TestMessagesConversationOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	session := &domain.Session{SessionUUID: "s-uuid", UserID: "u1", CreatedAt: time.Now()}
	if err := tx.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Same timestamp on purpose: insertion order must still win.
	now := time.Now()
	contents := []string{"first", "second", "third"}
	for i, content := range contents {
		msg := &domain.Message{
			MessageID:   fmt.Sprintf("msg_%d", i),
			SessionUUID: "s-uuid",
			Type:        domain.MessageTypeUser,
			Content:     content,
			CreatedAt:   now,
		}
		if err := tx.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := tx.GetMessagesBySession(ctx, "s-uuid")
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, content := range contents {
		if messages[i].Content != content {
			t.Fatalf("message %d out of order: %+v", i, messages[i])
		}
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func TestSavepointIsolatesFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	session := &domain.Session{SessionUUID: "sp-uuid", UserID: "u1", CreatedAt: time.Now()}
	if err := tx.WithSavepoint(ctx, func() error {
		return tx.CreateSession(ctx, session)
	}); err != nil {
		t.Fatalf("session savepoint failed: %v", err)
	}

	// A failing savepoint reverts only its own writes.
	boom := errors.New("boom")
	err = tx.WithSavepoint(ctx, func() error {
		msg := &domain.Message{
			MessageID:   "m1",
			SessionUUID: "sp-uuid",
			Type:        domain.MessageTypeUser,
			Content:     "doomed",
			CreatedAt:   time.Now(),
		}
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// The parent transaction stays usable and keeps the session.
	if err := tx.WithSavepoint(ctx, func() error {
		return tx.CreateMessage(ctx, &domain.Message{
			MessageID:   "m2",
			SessionUUID: "sp-uuid",
			Type:        domain.MessageTypeAI,
			Content:     "kept",
			CreatedAt:   time.Now(),
		})
	}); err != nil {
		t.Fatalf("second savepoint failed: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	messages, err := store.GetMessagesBySession(ctx, "sp-uuid")
	if err != nil {
		t.Fatalf("GetMessagesBySession failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "kept" {
		t.Fatalf("expected only the kept message, got %+v", messages)
	}
}

func TestRollbackDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	session := &domain.Session{SessionUUID: "rb-uuid", UserID: "u1", CreatedAt: time.Now()}
	if err := tx.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if _, err := store.GetSessionByUUID(ctx, "u1", "rb-uuid"); err == nil {
		t.Fatalf("expected session to be gone after rollback")
	}

	// Rollback after commit/rollback is a no-op.
	if err := tx.Rollback(); err != nil {
		t.Fatalf("second Rollback should be a no-op: %v", err)
	}
}

func TestUpdateSessionTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	session := &domain.Session{SessionUUID: "t-uuid", UserID: "u1", CreatedAt: time.Now()}
	if err := tx.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := tx.UpdateSessionTitle(ctx, "t-uuid", "관세율 문의"); err != nil {
		t.Fatalf("UpdateSessionTitle failed: %v", err)
	}
	if err := tx.UpdateSessionTitle(ctx, "missing", "x"); err == nil {
		t.Fatalf("expected missing session title update to fail")
	}

	got, err := tx.GetSessionByUUID(ctx, "u1", "t-uuid")
	if err != nil {
		t.Fatalf("GetSessionByUUID failed: %v", err)
	}
	if got.Title != "관세율 문의" {
		t.Fatalf("unexpected title: %q", got.Title)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func TestHSCodeAndDocumentDedupe(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	hs, err := tx.GetOrCreateHSCode(ctx, "8471.30", "From web search")
	if err != nil {
		t.Fatalf("GetOrCreateHSCode failed: %v", err)
	}
	again, err := tx.GetOrCreateHSCode(ctx, "8471.30", "ignored")
	if err != nil {
		t.Fatalf("GetOrCreateHSCode (existing) failed: %v", err)
	}
	if again.ID != hs.ID {
		t.Fatalf("expected same hscode row, got %d and %d", hs.ID, again.ID)
	}

	doc := &domain.Document{
		HSCodeID: hs.ID,
		Content:  "portable computers, tariff 0%",
		Metadata: json.RawMessage(`{"source":"web"}`),
	}
	created, err := tx.CreateDocument(ctx, doc)
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if !created || doc.ContentHash == "" {
		t.Fatalf("expected document insert with content hash, got %+v", doc)
	}

	dup := &domain.Document{HSCodeID: hs.ID, Content: "portable computers, tariff 0%"}
	created, err = tx.CreateDocument(ctx, dup)
	if err != nil {
		t.Fatalf("CreateDocument (dup) failed: %v", err)
	}
	if created || dup.ID != doc.ID {
		t.Fatalf("expected dedupe to return existing document, got created=%v id=%d", created, dup.ID)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}
