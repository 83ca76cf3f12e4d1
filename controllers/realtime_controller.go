package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"vastconnect-api/middleware"
	"vastconnect-api/realtime"
)

// RealtimeController upgrades authenticated requests to notification
// channels.
type RealtimeController struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewRealtimeController(hub *realtime.Hub, logger *slog.Logger) *RealtimeController {
	return &RealtimeController{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Connect serves one channel until the peer disconnects.
func (rc *RealtimeController) Connect(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		rc.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	realtime.NewClient(rc.hub, conn, userID, rc.logger).Run()
}
