package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tradenavi/orchestrator/internal/domain"
	"github.com/tradenavi/orchestrator/internal/jobs"
	store "github.com/tradenavi/orchestrator/internal/repository"
)

// EmitFunc delivers one stream event to the client. Returning an error
// aborts the stream (client gone).
type EmitFunc func(event domain.StreamEvent) error

// User-facing messages carried by terminal events.
const (
	msgComplete     = "응답 생성이 완료되었습니다."
	msgChainError   = "AI 응답 생성 중 오류가 발생했습니다."
	msgServiceError = "채팅 서비스에서 예기치 않은 오류가 발생했습니다."
)

const (
	statusCommitted  = "committed"
	statusRolledBack = "rolled_back"
)

// errChainStreaming marks a mid-stream chain failure whose error event
// has already been emitted.
var errChainStreaming = errors.New("chain streaming failed")

// StreamChat runs the full chat request lifecycle and emits SSE events
// through emit. All dependent writes happen in one transaction that is
// committed exactly once at the end; each side-effect runs in its own
// savepoint so recoverable failures degrade instead of aborting.
func (s *Service) StreamChat(ctx context.Context, req domain.ChatRequest, emit EmitFunc) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.ActiveStreams.Inc()
		defer s.metrics.ActiveStreams.Dec()
	}

	status := s.streamChat(ctx, req, emit)

	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(status).Inc()
		s.metrics.StreamDurationSeconds.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) streamChat(ctx context.Context, req domain.ChatRequest, emit EmitFunc) string {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		log.Printf("ERROR: failed to begin chat transaction: %v", err)
		s.emitFatal(emit)
		return statusRolledBack
	}
	defer tx.Rollback()

	committed, err := s.run(ctx, tx, req, emit)
	switch {
	case err == nil && committed:
		return statusCommitted
	case err == nil:
		// Commit failed; events already sent stand.
		return statusRolledBack
	case errors.Is(err, errChainStreaming):
		// The chain error event has been emitted; nothing follows it.
		return statusRolledBack
	default:
		log.Printf("ERROR: fatal error in chat stream: %v", err)
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("ERROR: rollback after fatal error failed: %v", rbErr)
		}
		s.emitFatal(emit)
		return statusRolledBack
	}
}

func (s *Service) emitFatal(emit EmitFunc) {
	if s.metrics != nil {
		s.metrics.ErrorsTotal.WithLabelValues(domain.ErrorCodeChatService).Inc()
	}
	if err := emit(domain.NewErrorEvent(msgServiceError, domain.ErrorCodeChatService)); err != nil {
		log.Printf("WARN: failed to emit service error event: %v", err)
	}
}

// run drives the request through its states. It returns committed=true
// once the final commit succeeds; a nil error with committed=false means
// the commit itself failed after an otherwise clean stream.
func (s *Service) run(ctx context.Context, tx *store.Tx, req domain.ChatRequest, emit EmitFunc) (bool, error) {
	userID := req.UserID

	// Session resolution. Failure here is recoverable: the request
	// degrades to anonymous and streams without persistence.
	var session *domain.Session
	isNewSession := false
	if userID != "" {
		spErr := tx.WithSavepoint(ctx, func() error {
			sess, isNew, err := s.resolveSession(ctx, tx, userID, req.SessionUUID)
			if err != nil {
				return err
			}
			session = sess
			isNewSession = isNew
			return nil
		})
		if spErr != nil {
			log.Printf("ERROR: failed to resolve session: %v", spErr)
			userID = ""
			session = nil
			isNewSession = false
		}
	}

	history := []domain.Message{}
	if session != nil {
		// Tell the client its new session identity before any tokens.
		if isNewSession {
			if err := emit(domain.NewSessionIDEvent(session.SessionUUID)); err != nil {
				return false, fmt.Errorf("failed to emit session_id event: %w", err)
			}
		}

		msgs, err := tx.GetMessagesBySession(ctx, session.SessionUUID)
		if err != nil {
			log.Printf("WARN: failed to load chat history: %v", err)
			msgs = nil
		}
		if msgs != nil {
			history = msgs
		}

		if spErr := tx.WithSavepoint(ctx, func() error {
			return tx.CreateMessage(ctx, &domain.Message{
				MessageID:   newMessageID(),
				SessionUUID: session.SessionUUID,
				Type:        domain.MessageTypeUser,
				Content:     req.Message,
				CreatedAt:   time.Now(),
			})
		}); spErr != nil {
			// The response still streams; only the log entry is lost.
			log.Printf("ERROR: failed to save user message: %v", spErr)
		}
	}

	// Chain streaming with buffered token emission.
	buf := &chunkBuffer{}
	var answer strings.Builder
	var finalChunk *domain.ChainChunk
	emitFailed := false

	streamErr := s.chainClient.Stream(ctx, domain.ChainInput{
		Question:    req.Message,
		ChatHistory: history,
	}, func(chunk domain.ChainChunk) error {
		c := chunk
		finalChunk = &c
		if chunk.Answer == "" {
			return nil
		}
		answer.WriteString(chunk.Answer)
		if s.metrics != nil {
			s.metrics.TokensTotal.Inc()
		}
		if content, ok := buf.Add(chunk.Answer); ok {
			if err := emit(domain.NewTokenEvent(content)); err != nil {
				emitFailed = true
				return fmt.Errorf("failed to emit token event: %w", err)
			}
		}
		return nil
	})
	if streamErr != nil {
		if emitFailed {
			return false, streamErr
		}
		log.Printf("ERROR: chain streaming failed: %v", streamErr)
		if s.metrics != nil {
			s.metrics.ErrorsTotal.WithLabelValues(domain.ErrorCodeChainStreaming).Inc()
		}
		if err := emit(domain.NewErrorEvent(msgChainError, domain.ErrorCodeChainStreaming)); err != nil {
			log.Printf("WARN: failed to emit chain error event: %v", err)
		}
		return false, errChainStreaming
	}
	if content, ok := buf.Flush(); ok {
		if err := emit(domain.NewTokenEvent(content)); err != nil {
			return false, fmt.Errorf("failed to emit final token event: %w", err)
		}
	}

	aiResponse := answer.String()

	// Post-processing: AI message, title, document job. Each persistence
	// step is its own savepoint; failures are logged and swallowed.
	if session != nil && aiResponse != "" {
		if spErr := tx.WithSavepoint(ctx, func() error {
			return tx.CreateMessage(ctx, &domain.Message{
				MessageID:   newMessageID(),
				SessionUUID: session.SessionUUID,
				Type:        domain.MessageTypeAI,
				Content:     aiResponse,
				CreatedAt:   time.Now(),
			})
		}); spErr != nil {
			log.Printf("ERROR: failed to save AI message: %v", spErr)
		}
	}

	if session != nil && isNewSession && aiResponse != "" {
		if spErr := tx.WithSavepoint(ctx, func() error {
			title := s.generateSessionTitle(ctx, req.Message, aiResponse)
			if err := tx.UpdateSessionTitle(ctx, session.SessionUUID, title); err != nil {
				return err
			}
			log.Printf("INFO: generated session title: %s", title)
			return nil
		}); spErr != nil {
			log.Printf("ERROR: failed to set session title: %v", spErr)
		}
	}

	if shouldSaveWebDocuments(finalChunk) {
		hscodeValue := extractHSCode(req.Message)
		docs := finalChunk.Docs
		log.Printf("INFO: scheduling background save of %d web search documents for HS code %s", len(docs), hscodeValue)
		s.scheduler.Submit(jobs.Job{
			Name: "save_documents",
			Run: func(jobCtx context.Context) error {
				return s.saveWebDocuments(jobCtx, hscodeValue, docs)
			},
		})
	}

	committed := true
	if err := tx.Commit(); err != nil {
		log.Printf("ERROR: failed to commit chat transaction, rolling back: %v", err)
		committed = false
	}

	source := "unknown"
	if finalChunk != nil && finalChunk.Source != "" {
		source = finalChunk.Source
	}
	if err := emit(domain.NewCompleteEvent(msgComplete, utf8.RuneCountInString(aiResponse), source)); err != nil {
		log.Printf("WARN: failed to emit complete event: %v", err)
	}
	return committed, nil
}

// resolveSession returns the caller's session, creating one with a fresh
// UUID when none was supplied. Lookups are scoped to the owning user.
func (s *Service) resolveSession(ctx context.Context, tx *store.Tx, userID, sessionUUID string) (*domain.Session, bool, error) {
	if sessionUUID == "" {
		session := &domain.Session{
			SessionUUID: uuid.New().String(),
			UserID:      userID,
			CreatedAt:   time.Now(),
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return nil, false, fmt.Errorf("failed to create session: %w", err)
		}
		return session, true, nil
	}

	if _, err := uuid.Parse(sessionUUID); err != nil {
		return nil, false, fmt.Errorf("invalid session uuid %q: %w", sessionUUID, err)
	}
	session, err := tx.GetSessionByUUID(ctx, userID, sessionUUID)
	if err != nil {
		return nil, false, err
	}
	return session, false, nil
}

// shouldSaveWebDocuments reports whether the final chunk's documents came
// from a web-search fallback and are worth persisting: non-empty, and
// none of them already served from the database.
func shouldSaveWebDocuments(finalChunk *domain.ChainChunk) bool {
	if finalChunk == nil || finalChunk.Source != domain.ChainSourceRAGOrWeb || len(finalChunk.Docs) == 0 {
		return false
	}
	for _, doc := range finalChunk.Docs {
		if doc.Metadata["source"] == domain.ChainSourceDB {
			return false
		}
	}
	return true
}

func newMessageID() string {
	return "msg_" + uuid.New().String()[:8]
}
