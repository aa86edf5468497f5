// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go-loket-queue/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection pumps one subscriber's messages to one WebSocket client.
type Connection struct {
	conn WSConn
	hub  *Hub
	sub  *Subscriber
}

// Configuration. Variables so tests can shorten them.
var (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

const maxMessageSize = 512

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Displays are served from several origins; the channel is read-only.
		return true
	},
}

// ServeWs upgrades the request and subscribes the client to loket.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, loket string) {
	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, loket=%q", r.RemoteAddr, loket)
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}
	c := h.attach(wsConn, loket)
	go c.readPump()
	go c.writePump()
}

func (h *Hub) attach(conn WSConn, loket string) *Connection {
	return &Connection{conn: conn, hub: h, sub: h.Subscribe(loket)}
}

// readPump only watches for the client going away; clients never send
// anything the server acts on.
func (c *Connection) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.sub)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			}
			return
		}
		logger.Debug.Printf("[readPump] Ignoring inbound messageType=%d on loket %s", messageType, c.sub.loket)
	}
}

// writePump serialises the subscriber's messages onto the socket and keeps
// the connection alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sub.Messages():
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				logger.Debug.Printf("[writePump] Subscription closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Error.Printf("[writePump] Error marshalling %s message: %v", msg.Type, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				c.hub.Unsubscribe(c.sub)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				c.hub.Unsubscribe(c.sub)
				return
			}
		}
	}
}
