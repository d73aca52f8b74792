package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/tradenavi/orchestrator/internal/domain"
)

// Tx is a request-scoped transaction with nested savepoint support. It is
// committed or rolled back exactly once; individual side-effects run inside
// savepoints so that a failed step reverts only its own writes.
//
// Tx is not safe for concurrent use; each request owns its own Tx.
type Tx struct {
	tx    *sql.Tx
	spSeq int
	done  bool
}

// Begin opens a new request transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// WithSavepoint runs fn inside a named savepoint. On success the
// savepoint's effects are folded into the parent transaction (RELEASE);
// on failure they are reverted (ROLLBACK TO) and fn's error is returned
// for the caller to log or swallow. The parent transaction stays usable
// either way.
func (t *Tx) WithSavepoint(ctx context.Context, fn func() error) error {
	t.spSeq++
	name := fmt.Sprintf("sp_%d", t.spSeq)

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint %s: %w", name, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("failed to roll back savepoint %s (after: %v): %w", name, err, rbErr)
		}
		// ROLLBACK TO leaves the savepoint on the stack; release it so the
		// name count stays bounded.
		if _, relErr := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return fmt.Errorf("failed to release savepoint %s (after: %v): %w", name, err, relErr)
		}
		return err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// Commit commits the parent transaction. Must be called at most once.
func (t *Tx) Commit() error {
	t.done = true
	return t.tx.Commit()
}

// Rollback rolls back the parent transaction in full. Safe to call after
// Commit (no-op error is swallowed by callers via defer).
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

// CreateSession inserts a new session row and fills in its generated ID.
func (t *Tx) CreateSession(ctx context.Context, session *domain.Session) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO sessions (session_uuid, user_id, title, created_at) VALUES (?, ?, NULLIF(?, ''), ?)`,
		session.SessionUUID, session.UserID, session.Title, session.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

// GetSessionByUUID looks up a session by UUID scoped to the owning user.
// Returns an error when the session does not exist.
func (t *Tx) GetSessionByUUID(ctx context.Context, userID, sessionUUID string) (*domain.Session, error) {
	return getSessionByUUID(ctx, t.tx, userID, sessionUUID)
}

// UpdateSessionTitle sets a session's title.
func (t *Tx) UpdateSessionTitle(ctx context.Context, sessionUUID, title string) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE sessions SET title = ? WHERE session_uuid = ?`, title, sessionUUID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session not found: %s", sessionUUID)
	}
	return nil
}

// CreateMessage appends a message to a session's log.
func (t *Tx) CreateMessage(ctx context.Context, message *domain.Message) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_uuid, message_type, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionUUID, message.Type, message.Content, message.CreatedAt)
	return err
}

// GetMessagesBySession returns a session's messages in conversation order.
func (t *Tx) GetMessagesBySession(ctx context.Context, sessionUUID string) ([]domain.Message, error) {
	return getMessagesBySession(ctx, t.tx, sessionUUID)
}

// GetOrCreateHSCode returns the HS code row for code, creating it if absent.
func (t *Tx) GetOrCreateHSCode(ctx context.Context, code, description string) (*domain.HSCode, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, code, description, created_at FROM hscodes WHERE code = ?`, code)

	var hs domain.HSCode
	var desc sql.NullString
	err := row.Scan(&hs.ID, &hs.Code, &desc, &hs.CreatedAt)
	if err == nil {
		if desc.Valid {
			hs.Description = desc.String
		}
		return &hs, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO hscodes (code, description) VALUES (?, ?)`, code, description)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.HSCode{ID: id, Code: code, Description: description}, nil
}

// CreateDocument persists a reference document against an HS code,
// deduplicated by SHA-256 content hash. Returns false when an identical
// document already exists.
func (t *Tx) CreateDocument(ctx context.Context, doc *domain.Document) (bool, error) {
	hash := sha256.Sum256([]byte(doc.Content))
	doc.ContentHash = hex.EncodeToString(hash[:])

	var existing int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE content_hash = ?`, doc.ContentHash).Scan(&existing)
	if err == nil {
		doc.ID = existing
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, err
	}

	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO documents (hscode_id, content, metadata, content_hash) VALUES (?, ?, ?, ?)`,
		doc.HSCodeID, doc.Content, string(doc.Metadata), doc.ContentHash)
	if err != nil {
		return false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	doc.ID = id
	return true, nil
}
