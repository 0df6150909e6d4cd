// Package clientsync maintains a resilient client-side connection to the
// event broadcast layer: connect/disconnect debouncing, bounded reconnection
// backoff, and a multi-consumer event-handler registry.
//
// Worker UIs mount and unmount rapidly; a disconnect is therefore deferred
// by a short delay and cancelled when a new connect supersedes it, so churn
// does not produce spurious teardown/redial cycles on the server.
package clientsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Status is the connection state surfaced to calling code. Reconnect
// failures never propagate as errors; they appear here instead.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusRetrying     Status = "retrying"
	StatusFailed       Status = "failed"
)

// Event is one broadcast event as received from the server.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Handler consumes one event. Handlers run in isolation: a panic in one is
// caught and logged without preventing other handlers from running.
type Handler func(event Event)

// Conn is one live transport connection.
type Conn interface {
	// ReadEvent blocks for the next event. Returns an error when the
	// connection is lost.
	ReadEvent() (Event, error)

	// Close tears the connection down.
	Close() error
}

// Dialer establishes transport connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Config tunes debouncing and reconnection.
type Config struct {
	// DisconnectDelay defers a non-forced disconnect so an immediately
	// following connect can cancel it.
	DisconnectDelay time.Duration

	// ReconnectInitialDelay is the first retry delay; each further retry
	// doubles it up to ReconnectMaxDelay.
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration

	// ReconnectMaxAttempts bounds automatic retries. After exhaustion only
	// a manual Connect resumes attempts.
	ReconnectMaxAttempts int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		DisconnectDelay:       300 * time.Millisecond,
		ReconnectInitialDelay: 500 * time.Millisecond,
		ReconnectMaxDelay:     10 * time.Second,
		ReconnectMaxAttempts:  8,
	}
}

// Agent owns one logical connection to the broadcaster.
type Agent struct {
	logger *slog.Logger
	dialer Dialer
	config Config

	mu               sync.Mutex
	connID           uint64
	status           Status
	conn             Conn
	handlers         map[string]map[uint64]Handler
	nextHandlerID    uint64
	pendingTeardown  *time.Timer
	exhaustionLogged bool
}

// NewAgent creates a disconnected agent.
func NewAgent(logger *slog.Logger, dialer Dialer, config Config) *Agent {
	return &Agent{
		logger:   logger.With("component", "clientsync"),
		dialer:   dialer,
		config:   config,
		status:   StatusDisconnected,
		handlers: make(map[string]map[uint64]Handler),
	}
}

// Status returns the current connection status.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// ConnectionID returns the identity of the current logical connection.
// It advances on every Connect, never reuses a value, and guards stale
// deferred teardowns and superseded dial loops.
func (a *Agent) ConnectionID() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connID
}

// Connect establishes the connection. A no-op when already connected.
// Cancels any pending deferred disconnect and assigns a new connection
// identity, superseding older dial or read loops.
func (a *Agent) Connect(ctx context.Context) {
	a.mu.Lock()

	if a.pendingTeardown != nil {
		a.pendingTeardown.Stop()
		a.pendingTeardown = nil
	}

	if a.status == StatusConnected || a.status == StatusConnecting || a.status == StatusRetrying {
		a.mu.Unlock()
		return
	}

	a.connID++
	id := a.connID
	a.status = StatusConnecting
	a.mu.Unlock()

	go a.dialLoop(ctx, id)
}

// Disconnect tears the connection down. Unless force is true, teardown is
// deferred by the configured delay; a Connect arriving inside the window
// cancels it. Repeated Connect calls within the window followed by one
// Disconnect produce exactly one underlying teardown.
func (a *Agent) Disconnect(force bool) {
	a.mu.Lock()

	if force {
		id := a.connID
		a.mu.Unlock()
		a.teardown(id)
		return
	}

	if a.pendingTeardown != nil {
		a.mu.Unlock()
		return
	}

	id := a.connID
	a.pendingTeardown = time.AfterFunc(a.config.DisconnectDelay, func() {
		a.teardown(id)
	})
	a.mu.Unlock()
}

// On registers a handler for an event name and returns its unsubscribe
// function. Multiple independent consumers may register for the same name.
func (a *Agent) On(eventName string, handler Handler) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextHandlerID++
	id := a.nextHandlerID

	if a.handlers[eventName] == nil {
		a.handlers[eventName] = make(map[uint64]Handler)
	}
	a.handlers[eventName][id] = handler

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers[eventName], id)
	}
}

// Emit dispatches an event to every registered handler for its name.
// Each handler runs in isolation; a panic is caught and logged.
func (a *Agent) Emit(event Event) {
	a.mu.Lock()
	registered := make([]Handler, 0, len(a.handlers[event.Name]))
	for _, handler := range a.handlers[event.Name] {
		registered = append(registered, handler)
	}
	a.mu.Unlock()

	for _, handler := range registered {
		a.invoke(event, handler)
	}
}

func (a *Agent) invoke(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("event handler panicked",
				"event", event.Name,
				"panic", fmt.Sprint(r))
		}
	}()

	handler(event)
}

// dialLoop attempts the transport connection with doubling backoff. The
// loop aborts silently when a newer Connect supersedes its identity.
func (a *Agent) dialLoop(ctx context.Context, id uint64) {
	delay := a.config.ReconnectInitialDelay

	for attempt := 0; ; attempt++ {
		if a.superseded(id) {
			return
		}

		conn, err := a.dialer.Dial(ctx)
		if err == nil {
			if !a.adopt(id, conn) {
				_ = conn.Close()
				return
			}
			a.readLoop(ctx, id, conn)
			return
		}

		if attempt+1 >= a.config.ReconnectMaxAttempts {
			a.giveUp(id, err)
			return
		}

		a.mu.Lock()
		if a.connID == id {
			a.status = StatusRetrying
		}
		a.mu.Unlock()

		a.logger.Warn("connect attempt failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > a.config.ReconnectMaxDelay {
			delay = a.config.ReconnectMaxDelay
		}
	}
}

// adopt installs the connection if this dial loop is still current.
func (a *Agent) adopt(id uint64, conn Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.connID != id {
		return false
	}

	a.conn = conn
	a.status = StatusConnected
	a.exhaustionLogged = false
	return true
}

// giveUp marks retries exhausted. Logged at most once until the next
// successful connect to avoid flooding.
func (a *Agent) giveUp(id uint64, err error) {
	a.mu.Lock()
	if a.connID != id {
		a.mu.Unlock()
		return
	}

	a.status = StatusFailed
	shouldLog := !a.exhaustionLogged
	a.exhaustionLogged = true
	a.mu.Unlock()

	if shouldLog {
		a.logger.Error("reconnect attempts exhausted",
			"attempts", a.config.ReconnectMaxAttempts,
			"error", err)
	}
}

// readLoop dispatches incoming events until the connection drops, then
// restarts the dial loop unless superseded.
func (a *Agent) readLoop(ctx context.Context, id uint64, conn Conn) {
	for {
		event, err := conn.ReadEvent()
		if err != nil {
			if a.superseded(id) {
				return
			}

			a.mu.Lock()
			if a.connID != id {
				a.mu.Unlock()
				return
			}
			a.conn = nil
			a.status = StatusRetrying
			a.mu.Unlock()

			a.logger.Warn("connection lost, reconnecting", "error", err)
			a.dialLoop(ctx, id)
			return
		}

		a.Emit(event)
	}
}

// teardown closes the connection if the identity is still current.
func (a *Agent) teardown(id uint64) {
	a.mu.Lock()

	if a.connID != id {
		// Superseded by a newer connect; the deferred disconnect is void.
		a.mu.Unlock()
		return
	}

	conn := a.conn
	a.conn = nil
	a.status = StatusDisconnected
	a.pendingTeardown = nil
	// Advance the identity so the read loop of the closed connection does
	// not trigger a reconnect.
	a.connID++
	a.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// superseded reports whether a newer Connect has replaced this identity.
func (a *Agent) superseded(id uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connID != id
}
