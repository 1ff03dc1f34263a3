package telephony

import (
	"sync"
)

// socket is the subset of a websocket connection the relay needs.
// Both gorilla/websocket and the fasthttp-based conn used by the Fiber
// websocket middleware satisfy it.
type socket interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Conn wraps the telephony-side websocket. Writes are serialized so the
// relay's fire-and-forget sends keep their per-socket ordering.
type Conn struct {
	ws      socket
	writeMu sync.Mutex
}

// NewConn wraps a websocket connection.
func NewConn(ws socket) *Conn {
	return &Conn{ws: ws}
}

// ReadFrame blocks for the next inbound frame. A malformed frame is
// returned as ErrMalformedFrame; any other error means the transport
// is gone.
func (c *Conn) ReadFrame() (Frame, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	return ParseFrame(data)
}

// Send writes one outbound frame.
func (c *Conn) Send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

// Close closes the underlying websocket.
func (c *Conn) Close() error {
	return c.ws.Close()
}
