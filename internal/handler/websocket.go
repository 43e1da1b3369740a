package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"realty_messaging/internal/realtime"
	"realty_messaging/pkg/logger"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	buffer   int
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, buffer int, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		buffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Connect checks the origin before upgrading.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// originAllowed accepts requests without an Origin header (non-browser
// clients), same-host origins, and origins the CORS layer has already
// approved for this response.
func originAllowed(c *gin.Context) bool {
	origin := c.GetHeader("Origin")
	if origin == "" {
		return true
	}
	if c.Writer.Header().Get("Access-Control-Allow-Origin") != "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == c.Request.Host
}

// Connect upgrades an authenticated request. The client lands in its own
// user room and may join chat rooms it belongs to.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !originAllowed(c) {
		h.log.Warn("Rejected websocket origin", "origin", c.GetHeader("Origin"), "user_id", user.ID)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade connection", "error", err, "user_id", user.ID)
		return
	}

	client := realtime.NewClient(h.hub, conn, user.ID, h.buffer, h.log)
	if !client.Start() {
		h.log.Warn("Hub closed, rejecting websocket client", "user_id", user.ID)
		return
	}
	h.log.Debug("Websocket client connected", "user_id", user.ID, "client_id", client.ID())
}
