package handler

import (
	"io"
	"net/http"

	"teams-pollbot/internal/services"

	"github.com/gin-gonic/gin"
)

// MaxWebhookBody bounds the webhook body size. Larger bodies are refused
// with 413 instead of being checked against a truncated signature.
const MaxWebhookBody = 1 << 20

type WebhookHandler struct {
	dispatcher *services.Dispatcher
}

func NewWebhookHandler(dispatcher *services.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// Receive handles a Teams outgoing-webhook call. The raw body is kept as
// read because the signature covers its exact bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxWebhookBody+1))
	if err != nil {
		c.String(http.StatusInternalServerError, "Error: %v", err)
		return
	}
	if len(body) > MaxWebhookBody {
		c.String(http.StatusRequestEntityTooLarge, "Error: request body exceeds %d bytes.", MaxWebhookBody)
		return
	}

	out := h.dispatcher.Dispatch(c.Request.Context(), body, c.GetHeader("Authorization"))
	if out.Reply == nil {
		c.String(out.Status, out.ErrorText())
		return
	}
	c.JSON(out.Status, out.Reply)
}
