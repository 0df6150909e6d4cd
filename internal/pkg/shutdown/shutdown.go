// Package shutdown sequences process teardown: stop accepting work, wait for
// in-flight work to drain, close live connections, then release persistent
// resources. Cleanup actions run strictly in registration order, never
// concurrently, because later actions close resources earlier actions still
// use.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"
)

// State is the orchestrator lifecycle state.
type State int32

const (
	// Running means the process serves traffic; shutdown is armed but idle.
	Running State = iota
	// Draining means a termination signal arrived and cleanup actions are
	// executing.
	Draining
	// Closing means all cleanup actions have run and the process is about
	// to exit.
	Closing
	// Terminated means the sequence finished, cleanly or by force.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Draining:
		return "DRAINING"
	case Closing:
		return "CLOSING"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Action is one named cleanup step.
type Action struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator runs registered cleanup actions once, in registration order,
// under a global force deadline. A second termination signal while draining
// does not restart the sequence; it shortens the remaining deadline instead.
type Orchestrator struct {
	logger       *slog.Logger
	forceTimeout time.Duration

	mu            sync.Mutex
	actions       []Action
	state         State
	currentAction string
	deadline      *time.Timer

	done chan struct{}

	// exit is overridable in tests.
	exit func(code int)
}

// NewOrchestrator creates an orchestrator with the given force timeout.
// If the cleanup sequence exceeds the timeout, the action in progress is
// logged and the process exits regardless of remaining actions.
func NewOrchestrator(logger *slog.Logger, forceTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		logger:       logger.With("component", "shutdown"),
		forceTimeout: forceTimeout,
		state:        Running,
		done:         make(chan struct{}),
		exit:         os.Exit,
	}
}

// Register appends a cleanup action. Actions registered after shutdown has
// begun are ignored.
func (o *Orchestrator) Register(name string, run func(ctx context.Context) error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Running {
		o.logger.Warn("cleanup action registered after shutdown began, ignoring", "action", name)
		return
	}

	o.actions = append(o.actions, Action{Name: name, Run: run})
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ShuttingDown reports whether the shutdown sequence has begun. Readiness
// probes use this to take the instance out of rotation.
func (o *Orchestrator) ShuttingDown() bool {
	return o.State() != Running
}

// Done returns a channel closed when the sequence completes.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// Shutdown runs the cleanup sequence. The first call claims it and executes
// the actions; later calls return immediately after shortening the remaining
// force deadline, so a repeated termination signal forces a faster exit
// instead of blocking behind the running sequence.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		o.shortenDeadline()
		return
	}

	o.state = Draining
	o.deadline = time.AfterFunc(o.forceTimeout, o.forceExit)
	actions := make([]Action, len(o.actions))
	copy(actions, o.actions)
	o.mu.Unlock()

	o.run(ctx, actions)
}

// HandleSignals arms the orchestrator on the given termination signals.
// The first signal starts the cleanup sequence; every further signal
// shortens the remaining force deadline.
func (o *Orchestrator) HandleSignals(sigs ...os.Signal) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, sigs...)

	go func() {
		for range ch {
			go o.Shutdown(context.Background())
		}
	}()
}

func (o *Orchestrator) run(ctx context.Context, actions []Action) {
	o.logger.Info("shutdown started", "actions", len(actions), "force_timeout", o.forceTimeout)
	started := time.Now()

	for _, action := range actions {
		o.mu.Lock()
		o.currentAction = action.Name
		o.mu.Unlock()

		actionStart := time.Now()
		if err := action.Run(ctx); err != nil {
			// Best-effort shutdown: a failed action is logged and the
			// sequence proceeds to the next one.
			o.logger.Error("cleanup action failed",
				"action", action.Name,
				"error", err,
				"elapsed", time.Since(actionStart))
			continue
		}

		o.logger.Info("cleanup action completed",
			"action", action.Name,
			"elapsed", time.Since(actionStart))
	}

	o.mu.Lock()
	o.state = Closing
	o.currentAction = ""
	if o.deadline != nil {
		o.deadline.Stop()
	}
	o.mu.Unlock()

	// Closing covers the final bookkeeping; Terminated is set only once the
	// completion has been logged, right before Done observers wake up.
	o.logger.Info("shutdown completed", "elapsed", time.Since(started))

	o.mu.Lock()
	o.state = Terminated
	o.mu.Unlock()
	close(o.done)
}

// shortenDeadline cuts the remaining force deadline on a repeated signal.
func (o *Orchestrator) shortenDeadline() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Draining || o.deadline == nil {
		return
	}

	o.logger.Warn("repeated termination signal, shortening force deadline",
		"remaining", shortenedTimeout)
	o.deadline.Reset(shortenedTimeout)
}

// forceExit fires when the force deadline elapses before the sequence ends.
func (o *Orchestrator) forceExit() {
	o.mu.Lock()
	action := o.currentAction
	o.state = Terminated
	o.mu.Unlock()

	o.logger.Error("shutdown force deadline exceeded", "action_in_progress", action)
	o.exit(1)
}

// shortenedTimeout is the remaining deadline after a repeated termination
// signal.
const shortenedTimeout = 2 * time.Second
