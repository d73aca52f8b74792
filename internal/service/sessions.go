package service

import (
	"context"

	"github.com/tradenavi/orchestrator/internal/domain"
)

// SessionMessages returns a session's message log in conversation order.
func (s *Service) SessionMessages(ctx context.Context, sessionUUID string) ([]domain.Message, error) {
	return s.store.GetMessagesBySession(ctx, sessionUUID)
}

// CheckAdmission evaluates the chat admission policy for a request.
// Returns allowed=false when the policy decides "block".
func (s *Service) CheckAdmission(ctx context.Context, req domain.ChatRequest) (bool, string, error) {
	if s.policyEngine == nil {
		return true, "", nil
	}
	decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
		"user_id":      req.UserID,
		"session_uuid": req.SessionUUID,
		"message":      req.Message,
	})
	if err != nil {
		return false, "", err
	}
	return decision != "block", reason, nil
}
