package ws

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"warehouse/internal/core/ports"

	"github.com/gorilla/websocket"
)

// Client is one registered connection: its monotonic identity, subscribed
// channel set, and buffered outbound queue.
type Client struct {
	id   uint64
	conn *websocket.Conn
	hub  *Hub

	send chan []byte
	done chan struct{}

	mu          sync.Mutex
	channels    map[string]struct{}
	lastSeen    time.Time
	closeCode   int
	closeReason string
	closeOnce   sync.Once
}

func newClient(id uint64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:       id,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		channels: make(map[string]struct{}),
		lastSeen: time.Now(),
	}
}

// ID returns the monotonic connection identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// LastSeen returns the time of the client's last heartbeat or connect.
func (c *Client) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Client) subscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[channel] = struct{}{}
}

func (c *Client) unsubscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, channel)
}

func (c *Client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.channels[channel]
	return ok
}

// enqueue queues raw bytes for delivery. Returns false when the send buffer
// is full or the client is closed; the caller then skips this event for
// this client.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// enqueueEvent encodes and queues a single event for this client only.
func (c *Client) enqueueEvent(event ports.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		c.hub.logger.Error("failed to encode event", "event", event.Name, "error", err)
		return
	}
	if !c.enqueue(data) {
		c.hub.logger.Warn("send buffer full, skipping event",
			"conn_id", c.id, "event", event.Name)
	}
}

// readPump consumes control messages until the connection errors or closes.
func (c *Client) readPump() {
	defer c.hub.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg controlMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Warn("ignoring malformed control message", "conn_id", c.id)
			continue
		}

		c.handleControl(msg)
	}
}

// handleControl applies one subscription change or heartbeat.
func (c *Client) handleControl(msg controlMessage) {
	switch msg.Action {
	case actionSubscribe:
		if validChannel(msg.Channel) {
			c.subscribe(msg.Channel)
		}
	case actionUnsubscribe:
		c.unsubscribe(msg.Channel)
	case actionHeartbeat:
		c.mu.Lock()
		c.lastSeen = time.Now()
		c.mu.Unlock()
	default:
		c.hub.logger.Warn("unknown control action", "conn_id", c.id, "action", msg.Action)
	}
}

// writePump drains the send queue to the socket, interleaving keepalive
// pings. Every write carries a deadline so a wedged peer cannot hold the
// goroutine forever. It is the only goroutine that writes data frames, so
// on a deliberate disconnect it can flush the remaining queue before the
// close frame without racing another writer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.flushAndClose()
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.drop(c)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.drop(c)
				_ = c.conn.Close()
				return
			}
		}
	}
}

// flushAndClose delivers whatever is still queued, then sends the close
// frame recorded by close and shuts the socket.
func (c *Client) flushAndClose() {
	c.mu.Lock()
	code, reason := c.closeCode, c.closeReason
	c.mu.Unlock()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.conn.Close()
				return
			}
		default:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason),
				time.Now().Add(time.Second),
			)
			_ = c.conn.Close()
			return
		}
	}
}

// close marks the connection for teardown once. The write pump observes the
// done channel, flushes the queue, and sends the recorded close frame so
// well-behaved peers distinguish a deliberate disconnect from a failure.
func (c *Client) close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeCode = code
		c.closeReason = reason
		c.mu.Unlock()
		close(c.done)
	})
}

// validChannel accepts the fixed channels and any zone channel.
func validChannel(channel string) bool {
	return channel == ChannelOrders ||
		channel == ChannelInventory ||
		strings.HasPrefix(channel, zoneChannelPfx)
}
