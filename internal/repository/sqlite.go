// Package store provides SQLite persistence for sessions, messages, and
// cached reference documents.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tradenavi/orchestrator/internal/domain"
)

// SQLiteStore implements persistence using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_uuid TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			title TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_uuid TEXT NOT NULL,
			message_type TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_uuid) REFERENCES sessions(session_uuid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_uuid, created_at)`,
		`CREATE TABLE IF NOT EXISTS hscodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hscode_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT,
			content_hash TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (hscode_id) REFERENCES hscodes(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_hscode ON documents(hscode_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetMessagesBySession returns a session's messages in conversation order
// outside any request transaction. Used by the read-only listing endpoint.
func (s *SQLiteStore) GetMessagesBySession(ctx context.Context, sessionUUID string) ([]domain.Message, error) {
	return getMessagesBySession(ctx, s.db, sessionUUID)
}

// GetSessionByUUID looks up a session by its UUID outside any request
// transaction, scoped to the owning user.
func (s *SQLiteStore) GetSessionByUUID(ctx context.Context, userID, sessionUUID string) (*domain.Session, error) {
	return getSessionByUUID(ctx, s.db, userID, sessionUUID)
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSessionByUUID(ctx context.Context, q querier, userID, sessionUUID string) (*domain.Session, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, session_uuid, user_id, title, created_at FROM sessions WHERE session_uuid = ? AND user_id = ?`,
		sessionUUID, userID)

	var session domain.Session
	var title sql.NullString
	if err := row.Scan(&session.ID, &session.SessionUUID, &session.UserID, &title, &session.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: user_id=%s session_uuid=%s", userID, sessionUUID)
		}
		return nil, err
	}
	if title.Valid {
		session.Title = title.String
	}
	return &session, nil
}

func getMessagesBySession(ctx context.Context, q querier, sessionUUID string) ([]domain.Message, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT message_id, session_uuid, message_type, content, created_at FROM messages
		 WHERE session_uuid = ? ORDER BY created_at ASC, rowid ASC`,
		sessionUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.MessageID, &msg.SessionUUID, &msg.Type, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
