package websocket

import (
	"context"
	"net/http"
	"time"

	"teams-pollbot/internal/events"
	"teams-pollbot/internal/services"
	"teams-pollbot/internal/transport/httpdto"
	"teams-pollbot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	authorizer *ChannelAuthorizer
	logger     *FeedLogger
	upgrader   websocket.Upgrader
}

func NewHandler(auth *services.AuthService, hub *Hub, log *logger.Logger) *Handler {
	return &Handler{
		auth:       auth,
		hub:        hub,
		authorizer: NewChannelAuthorizer(),
		logger:     NewFeedLogger(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades GET /v1/ws?token=<secret>[&channel=channel:poll:<id>]
// into a read-only feed of poll events. Without a channel the connection
// follows the active poll.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if !h.auth.Authenticate(nil, token) {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	channel := c.DefaultQuery("channel", events.ChannelActivePoll)
	if !h.authorizer.CanSubscribe(channel) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("channel not allowed", "FORBIDDEN"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade_failed", "", channel, err)
		return
	}

	client := NewClient(conn, channel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)
	h.logger.Info("connected", client.ID, channel, zap.String("remote_addr", c.ClientIP()))

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
	}

	h.hub.Unregister(client)
	h.logger.Info("disconnected", client.ID, channel)
}
