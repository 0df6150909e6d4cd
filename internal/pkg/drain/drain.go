// Package drain tracks in-flight request and connection handlers so shutdown
// can wait for live work to finish before closing resources underneath it.
package drain

import (
	"errors"
	"sync"
	"time"
)

// ErrDraining is returned by Begin once draining has started. New work must
// be rejected immediately rather than queued, so drain time stays bounded by
// the work already in flight.
var ErrDraining = errors.New("server is draining")

// Tracker counts in-flight handlers. Begin/End bracket each handler;
// WaitForDrain blocks until the count reaches zero or a timeout elapses.
type Tracker struct {
	mu       sync.Mutex
	cond     *sync.Cond
	inFlight int
	draining bool
}

// NewTracker creates a tracker with no in-flight work.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Begin registers one in-flight handler. Returns ErrDraining if draining has
// started; the caller must reject the work.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.draining {
		return ErrDraining
	}

	t.inFlight++
	return nil
}

// End unregisters one in-flight handler previously registered with Begin.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inFlight == 0 {
		return
	}

	t.inFlight--
	if t.inFlight == 0 {
		t.cond.Broadcast()
	}
}

// InFlight returns the current number of registered handlers.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Draining reports whether WaitForDrain has been called.
func (t *Tracker) Draining() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draining
}

// WaitForDrain stops admission of new work and blocks until all in-flight
// handlers complete or the timeout elapses. Returns true if the count
// reached zero in time; false on timeout, leaving still-open handlers to be
// force-terminated by the caller.
func (t *Tracker) WaitForDrain(timeout time.Duration) bool {
	t.mu.Lock()
	t.draining = true

	if t.inFlight == 0 {
		t.mu.Unlock()
		return true
	}

	deadline := time.AfterFunc(timeout, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer deadline.Stop()

	start := time.Now()
	for t.inFlight > 0 && time.Since(start) < timeout {
		t.cond.Wait()
	}

	drained := t.inFlight == 0
	t.mu.Unlock()
	return drained
}
