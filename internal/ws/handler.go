package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raydebug/puretexaspoker-sub003/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to live connections. The caller identifies
// itself with a playerId query parameter; the connection is bound in the
// session registry for the lifetime of the socket.
func Handler(hub *Hub, sessions session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.Query("playerId")
		if playerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "playerId is required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		connID := uuid.New().String()
		if err := sessions.Bind(c.Request.Context(), connID, playerID); err != nil {
			_ = conn.Close()
			return
		}

		client := &Client{
			PlayerID: playerID,
			Conn:     conn,
			Send:     make(chan OutgoingMessage, 32),
			hub:      hub,
			onClose: func() {
				_ = sessions.Unbind(context.Background(), connID)
			},
		}
		hub.Register(client)
		go client.writePump()
		go client.readPump()
	}
}
