package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bus-tracker-backend/internal/model"
)

// Client is one authenticated websocket session. Identity claims are
// fixed at handshake time; channel membership lives in the hub.
type Client struct {
	UserID int64
	Role   model.Role
	Name   string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn, userID int64, role model.Role, name string) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Name:   name,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBuffer),
	}
}

// close tears the transport down; the read pump then unregisters the
// session.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump processes inbound frames in arrival order. Events from one
// connection are therefore handled FIFO; ordering across connections
// is not guaranteed and not needed, since each bus's state is
// independent.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(64 << 10)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Printf("read error for user %d: %v", c.UserID, err)
			}
			return
		}
		c.hub.route(context.Background(), c, raw)
	}
}

// writePump serializes outbound frames and keeps the connection alive
// with pings. Liveness detection is the transport's job; the hub
// imposes no operation timeouts of its own.
func (c *Client) writePump() {
	pingPeriod := c.hub.cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
