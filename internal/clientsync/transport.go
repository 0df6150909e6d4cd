package clientsync

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials the broadcaster endpoint over WebSocket.
type WebSocketDialer struct {
	url string
}

// NewWebSocketDialer creates a dialer for the given ws:// or wss:// URL.
func NewWebSocketDialer(url string) *WebSocketDialer {
	return &WebSocketDialer{url: url}
}

// Dial establishes one WebSocket connection.
func (d *WebSocketDialer) Dial(ctx context.Context) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, d.url, nil)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	return &wsConn{conn: conn}, nil
}

// wsConn adapts a gorilla connection to the agent's Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

// ReadEvent blocks for the next event frame and decodes its envelope.
func (c *wsConn) ReadEvent() (Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Event{}, err
	}

	var event Event
	if err = json.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}

	return event, nil
}

// Close tears the connection down.
func (c *wsConn) Close() error {
	return c.conn.Close()
}
