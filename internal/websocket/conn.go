package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codeladder/exam-backend/internal/response"
)

const (
	writeDeadline = 10 * time.Second
	readDeadline  = 5 * time.Minute
)

// Conn wraps a gorilla connection with a write mutex. The read loop, the
// timer goroutine and the broadcast forwarder all write to the same socket;
// gorilla connections do not allow concurrent writers.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// Wrap adapts a raw gorilla connection.
func Wrap(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteEvent sends a typed event payload with a write deadline.
func (c *Conn) WriteEvent(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.ws.WriteJSON(v)
}

// WriteRaw sends a pre-marshaled message, used by the broadcast forwarder.
func (c *Conn) WriteRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// WriteError sends a structured error event. The connection stays usable.
func (c *Conn) WriteError(code response.ErrCode) error {
	return c.WriteEvent(ErrorPayload{
		Event:       EventError,
		Code:        code,
		Description: response.GetMessage(code),
	})
}

// ReadEnvelope reads and decodes the next client request with a read
// deadline.
func (c *Conn) ReadEnvelope(env *Envelope) error {
	c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	return c.ws.ReadJSON(env)
}
