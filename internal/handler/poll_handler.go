package handler

import (
	"errors"
	"net/http"

	"teams-pollbot/internal/services"
	"teams-pollbot/internal/transport/httpdto"
	pollbot_errors "teams-pollbot/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	dispatcher *services.Dispatcher
}

func NewPollHandler(dispatcher *services.Dispatcher) *PollHandler {
	return &PollHandler{dispatcher: dispatcher}
}

func (h *PollHandler) Active(c *gin.Context) {
	summary, err := h.dispatcher.ActivePoll(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(summary))
	case errors.Is(err, pollbot_errors.ErrNoActivePoll):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NO_ACTIVE_POLL"))
	case errors.Is(err, pollbot_errors.ErrActivePollNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "ACTIVE_POLL_NOT_FOUND"))
	default:
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "STORAGE_UNAVAILABLE"))
	}
}
