// Package realtime provides a client for OpenAI's Realtime API
// for low-latency speech-to-speech conversations with tool use.
package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// RealtimeURL is the websocket endpoint of the Realtime API.
	RealtimeURL = "wss://api.openai.com/v1/realtime"

	// Model is the realtime model voicebridge speaks to.
	Model = "gpt-4o-realtime-preview-2024-10-01"

	readTimeout  = 120 * time.Second
	pingInterval = 30 * time.Second
)

// Client manages the websocket connection to the Realtime API. Reads
// are pulled by a single pump via ReadEvent; writes may come from any
// goroutine and are serialized.
type Client struct {
	apiKey string

	ws   *websocket.Conn
	wsMu sync.Mutex

	stateMu sync.Mutex
	open    bool
}

// NewClient creates a Realtime API client.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

// Connect establishes the websocket connection.
func (c *Client) Connect() error {
	url := fmt.Sprintf("%s?model=%s", RealtimeURL, Model)

	header := make(map[string][]string)
	header["Authorization"] = []string{"Bearer " + c.apiKey}
	header["OpenAI-Beta"] = []string{"realtime=v1"}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("realtime: connect: %w", err)
	}

	ws.SetPingHandler(func(appData string) error {
		c.wsMu.Lock()
		defer c.wsMu.Unlock()
		return ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	ws.SetReadDeadline(time.Now().Add(readTimeout))

	c.stateMu.Lock()
	c.ws = ws
	c.open = true
	c.stateMu.Unlock()

	go c.keepAlive()

	return nil
}

// keepAlive sends periodic pings to keep the connection alive.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !c.IsOpen() {
			return
		}
		c.wsMu.Lock()
		err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
		c.wsMu.Unlock()
		if err != nil {
			return
		}
	}
}

// ReadEvent blocks for the next server event. A malformed event is
// returned as ErrMalformedEvent; any other error means the connection
// is gone.
func (c *Client) ReadEvent() (Event, error) {
	c.ws.SetReadDeadline(time.Now().Add(readTimeout))

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		c.markClosed()
		return Event{}, err
	}
	return ParseEvent(data)
}

// Send writes one client message. Sending on a closed connection is a
// no-op so pumps can race shutdown without error noise.
func (c *Client) Send(msg any) error {
	if !c.IsOpen() {
		return nil
	}
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return c.ws.WriteJSON(msg)
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	c.stateMu.Lock()
	ws := c.ws
	wasOpen := c.open
	c.open = false
	c.stateMu.Unlock()

	if !wasOpen || ws == nil {
		return nil
	}
	return ws.Close()
}

// IsOpen reports whether the connection is usable.
func (c *Client) IsOpen() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.open
}

func (c *Client) markClosed() {
	c.stateMu.Lock()
	c.open = false
	c.stateMu.Unlock()
}
