package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(timeout time.Duration) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(logger, timeout)
}

func TestOrchestrator_RunsActionsInRegistrationOrder(t *testing.T) {
	o := newTestOrchestrator(5 * time.Second)

	var order []string
	for _, name := range []string{"stop-intake", "wait-drain", "close-connections", "close-pool"} {
		o.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	o.Shutdown(context.Background())

	assert.Equal(t, []string{"stop-intake", "wait-drain", "close-connections", "close-pool"}, order)
	assert.Equal(t, Terminated, o.State())

	select {
	case <-o.Done():
	default:
		t.Fatal("Done channel not closed after completed shutdown")
	}
}

func TestOrchestrator_ActionFailureDoesNotAbortSequence(t *testing.T) {
	o := newTestOrchestrator(5 * time.Second)

	var ran []string
	o.Register("first", func(context.Context) error {
		ran = append(ran, "first")
		return errors.New("pool already closed")
	})
	o.Register("second", func(context.Context) error {
		ran = append(ran, "second")
		return nil
	})

	o.Shutdown(context.Background())

	assert.Equal(t, []string{"first", "second"}, ran)
	assert.Equal(t, Terminated, o.State())
}

func TestOrchestrator_SecondShutdownDoesNotRestartSequence(t *testing.T) {
	o := newTestOrchestrator(5 * time.Second)

	var runs atomic.Int32
	o.Register("count", func(context.Context) error {
		runs.Add(1)
		return nil
	})

	o.Shutdown(context.Background())
	o.Shutdown(context.Background())

	assert.Equal(t, int32(1), runs.Load())
}

func TestOrchestrator_ForceDeadlineExits(t *testing.T) {
	o := newTestOrchestrator(50 * time.Millisecond)

	exited := make(chan int, 1)
	o.exit = func(code int) { exited <- code }

	release := make(chan struct{})
	o.Register("hung-action", func(context.Context) error {
		<-release
		return nil
	})

	go o.Shutdown(context.Background())

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("force deadline did not fire")
	}
	close(release)
}

func TestOrchestrator_RepeatedSignalShortensDeadline(t *testing.T) {
	// Force timeout far in the future; only the shortened deadline can fire
	// within the test's wait window.
	o := newTestOrchestrator(time.Hour)

	exited := make(chan int, 1)
	o.exit = func(code int) { exited <- code }

	entered := make(chan struct{})
	release := make(chan struct{})
	o.Register("hung-action", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})

	go o.Shutdown(context.Background())
	<-entered

	// Second signal while draining.
	o.Shutdown(context.Background())

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(shortenedTimeout + 2*time.Second):
		t.Fatal("shortened deadline did not fire")
	}
	close(release)
}

func TestOrchestrator_SecondShutdownReturnsWhileSequenceRuns(t *testing.T) {
	o := newTestOrchestrator(time.Hour)

	entered := make(chan struct{})
	release := make(chan struct{})
	o.Register("hung-action", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})

	go o.Shutdown(context.Background())
	<-entered

	// The second call must not block behind the running sequence; it only
	// shortens the deadline and returns.
	returned := make(chan struct{})
	go func() {
		o.Shutdown(context.Background())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("second Shutdown blocked behind the running sequence")
	}

	close(release)
	<-o.Done()
}

// completionStateHandler records the orchestrator state at the moment the
// completion message is logged.
type completionStateHandler struct {
	orchestrator *Orchestrator
	state        chan State
}

func (h *completionStateHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *completionStateHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "shutdown completed" {
		h.state <- h.orchestrator.State()
	}
	return nil
}

func (h *completionStateHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *completionStateHandler) WithGroup(string) slog.Handler { return h }

func TestOrchestrator_ClosingPrecedesTerminated(t *testing.T) {
	h := &completionStateHandler{state: make(chan State, 1)}
	o := NewOrchestrator(slog.New(h), 5*time.Second)
	h.orchestrator = o

	o.Register("noop", func(context.Context) error { return nil })
	o.Shutdown(context.Background())

	select {
	case s := <-h.state:
		assert.Equal(t, Closing, s)
	default:
		t.Fatal("completion was never logged")
	}
	assert.Equal(t, Terminated, o.State())
}

func TestOrchestrator_ShuttingDownFlag(t *testing.T) {
	o := newTestOrchestrator(5 * time.Second)

	assert.False(t, o.ShuttingDown())
	assert.Equal(t, Running, o.State())

	entered := make(chan struct{})
	release := make(chan struct{})
	o.Register("hold", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})

	go o.Shutdown(context.Background())
	<-entered

	assert.True(t, o.ShuttingDown())
	assert.Equal(t, Draining, o.State())

	close(release)
	<-o.Done()
	assert.True(t, o.ShuttingDown())
}

func TestOrchestrator_RegisterAfterShutdownIsIgnored(t *testing.T) {
	o := newTestOrchestrator(5 * time.Second)

	o.Shutdown(context.Background())

	called := false
	o.Register("late", func(context.Context) error {
		called = true
		return nil
	})

	require.False(t, called)
	assert.Equal(t, Terminated, o.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "DRAINING", Draining.String())
	assert.Equal(t, "CLOSING", Closing.String())
	assert.Equal(t, "TERMINATED", Terminated.String())
}
