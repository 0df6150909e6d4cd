// Package ws implements the real-time event broadcast layer. Connected
// clients (pickers, packers, supervisors) subscribe to channels (all orders,
// one zone, or inventory) and receive the matching domain events as they
// are published.
//
// Delivery is at-most-once and best-effort: there is no persistence and no
// replay buffer. A client that is disconnected at publish time receives
// nothing for that event and is not backfilled on reconnect.
package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"warehouse/internal/core/ports"

	"github.com/gorilla/websocket"
)

// Hub is the connection registry and fan-out point. It implements
// ports.EventPublisher.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[uint64]*Client
	nextID  uint64
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "ws"),
		clients: make(map[uint64]*Client),
	}
}

// Register wraps an upgraded connection in a Client, assigns it the next
// monotonic connection ID, subscribes it to the orders channel, and starts
// its read and write loops. Returns nil if the hub is already closed.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}

	h.nextID++
	client := newClient(h.nextID, conn, h)
	client.subscribe(ChannelOrders)
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.Info("client connected", "conn_id", client.id)

	go client.writePump()
	go client.readPump()

	client.enqueueEvent(ports.Event{
		Name:    ports.EventConnected,
		Scope:   ports.ScopeOrders,
		Payload: ports.ConnectedPayload{Message: "connected to fulfillment sync"},
	})

	return client
}

// Publish fans the event out to every client subscribed to its channel.
// Each delivery is independent and at-most-once: a client whose send buffer
// is full at publish time misses this event but keeps its connection, and
// publishing never blocks on any subscriber.
func (h *Hub) Publish(event ports.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event.Name, "error", err)
		return
	}

	channel := channelForEvent(event)

	h.mu.RLock()
	subscribers := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		if client.subscribed(channel) {
			subscribers = append(subscribers, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range subscribers {
		if !client.enqueue(data) {
			h.logger.Warn("send buffer full, skipping event",
				"conn_id", client.id, "event", event.Name)
		}
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects future registrations.
// Used as the broadcaster's shutdown action.
func (h *Hub) Close(_ context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[uint64]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.close(websocket.CloseGoingAway, "server shutting down")
	}

	h.logger.Info("all clients disconnected", "count", len(clients))
	return nil
}

// drop removes a client from the registry and closes its connection.
// Called on read errors and write errors.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client.id]
	delete(h.clients, client.id)
	h.mu.Unlock()

	if present {
		h.logger.Info("client disconnected", "conn_id", client.id)
	}
	client.close(websocket.CloseNormalClosure, "")
}

// Timeouts and limits for client connections.
const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)
