package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetSessionMessages retrieves a session's messages in conversation order.
// GET /v1/sessions/:session_uuid/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionUUID := c.Param("session_uuid")

	ctx := c.Request().Context()

	messages, err := h.service.SessionMessages(ctx, sessionUUID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}
