package v1

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tradenavi/orchestrator/internal/domain"
)

// StreamChat handles the streaming chat request.
// POST /v1/chat/stream
//
// The response is an SSE stream of "data: <JSON>\n\n" frames. Admission
// is checked before any streaming starts; a blocked request gets a 403
// and never opens a stream.
func (h *Handler) StreamChat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	allowed, reason, err := h.service.CheckAdmission(ctx, req)
	if err != nil {
		log.Printf("ERROR: admission policy evaluation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "policy evaluation failed"})
	}
	if !allowed {
		log.Printf("WARN: chat request blocked by policy: %s", reason)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "request blocked by policy"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	h.service.StreamChat(ctx, req, func(event domain.StreamEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
			return err
		}
		res.Flush()
		return nil
	})
	return nil
}
