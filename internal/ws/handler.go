package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/pkg/logger"
)

const (
	maxMessageSize = 1024
	pongWait       = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests to websocket connections and runs their read
// loop.
type Handler struct {
	hub    *Hub
	logger *logger.Logger
}

func NewHandler(hub *Hub, logger *logger.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.Serve)
}

type inboundFrame struct {
	Type string `json:"type"`
}

var pongFrame = []byte(`{"type":"pong"}`)

// Serve handles the websocket handshake. Identity comes from the connection
// request's query parameters; a request carrying an unknown role is rejected
// before the upgrade, while one missing identity entirely is upgraded but
// never registered.
func (h *Handler) Serve(c *gin.Context) {
	userID := c.Query("userId")
	roleStr := c.Query("userRole")

	var role model.Role
	if roleStr != "" {
		parsed, err := model.ParseRole(roleStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		role = parsed
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(err, "websocket upgrade failed")
		return
	}

	conn := NewConn(sock, userID, role)
	if userID != "" && role != "" {
		h.hub.Register(conn)
	} else {
		h.logger.Debug("anonymous websocket connection, not registered")
	}
	defer h.hub.Unregister(conn)

	sock.SetReadLimit(maxMessageSize)
	sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := sock.ReadMessage()
		if err != nil {
			return
		}
		sock.SetReadDeadline(time.Now().Add(pongWait))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Debug("dropping malformed frame", "user_id", userID, "error", err.Error())
			continue
		}

		// Application-level heartbeat; every other frame type is ignored.
		if frame.Type == "ping" {
			if err := conn.write(pongFrame); err != nil {
				return
			}
		}
	}
}
