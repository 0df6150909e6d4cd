package clientsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"warehouse/internal/clientsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn feeds scripted events to the agent and records teardown calls.
type fakeConn struct {
	events chan clientsync.Event
	closed atomic.Int32
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan clientsync.Event, 16)}
}

func (c *fakeConn) ReadEvent() (clientsync.Event, error) {
	event, ok := <-c.events
	if !ok {
		return clientsync.Event{}, errors.New("connection closed")
	}
	return event, nil
}

func (c *fakeConn) Close() error {
	c.closed.Add(1)
	close(c.events)
	return nil
}

// fakeDialer controls dial outcomes per attempt.
type fakeDialer struct {
	mu       sync.Mutex
	failures int
	dials    int
	conns    []*fakeConn
}

func (d *fakeDialer) Dial(context.Context) (clientsync.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.failures > 0 {
		d.failures--
		return nil, errors.New("connection refused")
	}

	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func (d *fakeDialer) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, conn := range d.conns {
		total += int(conn.closed.Load())
	}
	return total
}

func testConfig() clientsync.Config {
	return clientsync.Config{
		DisconnectDelay:       50 * time.Millisecond,
		ReconnectInitialDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:     40 * time.Millisecond,
		ReconnectMaxAttempts:  3,
	}
}

func newTestAgent(dialer clientsync.Dialer) *clientsync.Agent {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return clientsync.NewAgent(logger, dialer, testConfig())
}

func waitForStatus(t *testing.T, agent *clientsync.Agent, want clientsync.Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for agent.Status() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected status %q, have %q", want, agent.Status())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestAgent_ConnectAssignsMonotonicIdentity(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)
	first := agent.ConnectionID()

	agent.Disconnect(true)
	waitForStatus(t, agent, clientsync.StatusDisconnected)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)

	assert.Greater(t, agent.ConnectionID(), first)
}

func TestAgent_ConnectIsNoOpWhenConnected(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)
	id := agent.ConnectionID()

	agent.Connect(t.Context())

	assert.Equal(t, id, agent.ConnectionID())
	assert.Equal(t, 1, dialer.dialCount())
}

func TestAgent_DeferredDisconnectIsCancelledBySupersedingConnect(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)

	// Rapid unmount/remount: disconnect deferred, connect within window.
	agent.Disconnect(false)
	agent.Connect(t.Context())

	time.Sleep(3 * testConfig().DisconnectDelay)

	assert.Equal(t, clientsync.StatusConnected, agent.Status())
	assert.Zero(t, dialer.closeCount())
}

func TestAgent_RepeatedConnectsThenOneDisconnect_SingleTeardown(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)

	for range 5 {
		agent.Connect(t.Context())
	}
	agent.Disconnect(false)

	time.Sleep(3 * testConfig().DisconnectDelay)

	assert.Equal(t, clientsync.StatusDisconnected, agent.Status())
	assert.Equal(t, 1, dialer.closeCount())
}

func TestAgent_ForcedDisconnectIsImmediate(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)

	agent.Disconnect(true)

	waitForStatus(t, agent, clientsync.StatusDisconnected)
	assert.Equal(t, 1, dialer.closeCount())
}

func TestAgent_ReconnectBackoffStopsAfterMaxAttempts(t *testing.T) {
	dialer := &fakeDialer{failures: 100}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusFailed)

	assert.Equal(t, testConfig().ReconnectMaxAttempts, dialer.dialCount())

	// No further automatic attempts once exhausted.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, testConfig().ReconnectMaxAttempts, dialer.dialCount())
}

func TestAgent_ManualConnectResumesAfterExhaustion(t *testing.T) {
	dialer := &fakeDialer{failures: 100}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusFailed)

	dialer.mu.Lock()
	dialer.failures = 0
	dialer.mu.Unlock()

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)
}

func TestAgent_ReconnectsAfterConnectionLoss(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)
	id := agent.ConnectionID()

	// Server drops the connection.
	require.NoError(t, dialer.lastConn().Close())

	deadline := time.Now().Add(5 * time.Second)
	for dialer.dialCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("agent did not redial after connection loss")
		}
		time.Sleep(2 * time.Millisecond)
	}

	waitForStatus(t, agent, clientsync.StatusConnected)
	// Automatic reconnect keeps the logical connection identity.
	assert.Equal(t, id, agent.ConnectionID())
}

func TestAgent_HandlersReceiveEvents(t *testing.T) {
	dialer := &fakeDialer{}
	agent := newTestAgent(dialer)

	received := make(chan clientsync.Event, 1)
	agent.On("pick:updated", func(event clientsync.Event) {
		received <- event
	})

	agent.Connect(t.Context())
	waitForStatus(t, agent, clientsync.StatusConnected)

	dialer.lastConn().events <- clientsync.Event{
		Name: "pick:updated",
		Data: json.RawMessage(`{"orderId":"o1"}`),
	}

	select {
	case event := <-received:
		assert.Equal(t, "pick:updated", event.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not receive event")
	}
}

func TestAgent_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	agent := newTestAgent(&fakeDialer{})

	var calls atomic.Int32
	agent.On("order:completed", func(clientsync.Event) {
		panic("handler bug")
	})
	agent.On("order:completed", func(clientsync.Event) {
		calls.Add(1)
	})

	agent.Emit(clientsync.Event{Name: "order:completed"})

	assert.Equal(t, int32(1), calls.Load())
}

func TestAgent_UnsubscribeStopsDelivery(t *testing.T) {
	agent := newTestAgent(&fakeDialer{})

	var calls atomic.Int32
	unsubscribe := agent.On("zone:updated", func(clientsync.Event) {
		calls.Add(1)
	})

	agent.Emit(clientsync.Event{Name: "zone:updated"})
	unsubscribe()
	agent.Emit(clientsync.Event{Name: "zone:updated"})

	assert.Equal(t, int32(1), calls.Load())
}
