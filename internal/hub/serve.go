package hub

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bus-tracker-backend/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browsers connect from the frontend origin; token auth is the
	// actual gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS authenticates the handshake and hands the connection to the
// hub. A missing or invalid token rejects the attempt before any
// session exists.
func ServeWS(h *Hub, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		claims, err := auth.ParseToken(jwtSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			h.logger.Printf("websocket upgrade failed for user %d: %v", claims.UserID, err)
			return
		}

		client := newClient(h, conn, claims.UserID, claims.Role, claims.Name)
		h.register(client)

		go client.writePump()
		go client.readPump()
	}
}
