package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// SocketConn wraps a gorilla connection with a write mutex: the hub fan-out
// and the read loop's pong reply write concurrently to the same socket.
type SocketConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewSocketConn(c *websocket.Conn) *SocketConn {
	return &SocketConn{ws: c}
}

func (c *SocketConn) WriteText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *SocketConn) Close() error {
	return c.ws.Close()
}

// ReadMessage exposes the underlying read for the receive loop.
func (c *SocketConn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}
