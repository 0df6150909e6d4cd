package drain_test

import (
	"sync"
	"testing"
	"time"

	"warehouse/internal/pkg/drain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_BeginEnd(t *testing.T) {
	tracker := drain.NewTracker()

	require.NoError(t, tracker.Begin())
	require.NoError(t, tracker.Begin())
	assert.Equal(t, 2, tracker.InFlight())

	tracker.End()
	tracker.End()
	assert.Equal(t, 0, tracker.InFlight())
}

func TestTracker_EndWithoutBeginIsSafe(t *testing.T) {
	tracker := drain.NewTracker()

	tracker.End()

	assert.Equal(t, 0, tracker.InFlight())
}

func TestTracker_WaitForDrain_NoWork(t *testing.T) {
	tracker := drain.NewTracker()

	assert.True(t, tracker.WaitForDrain(time.Second))
	assert.True(t, tracker.Draining())
}

func TestTracker_WaitForDrain_CompletesWhenWorkFinishes(t *testing.T) {
	tracker := drain.NewTracker()
	require.NoError(t, tracker.Begin())

	done := make(chan bool, 1)
	go func() {
		done <- tracker.WaitForDrain(5 * time.Second)
	}()

	// Give the waiter time to start draining, then finish the handler.
	for !tracker.Draining() {
		time.Sleep(time.Millisecond)
	}
	tracker.End()

	select {
	case drained := <-done:
		assert.True(t, drained)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForDrain did not return after last handler finished")
	}
}

func TestTracker_WaitForDrain_TimesOut(t *testing.T) {
	tracker := drain.NewTracker()
	require.NoError(t, tracker.Begin())

	drained := tracker.WaitForDrain(50 * time.Millisecond)

	assert.False(t, drained)
	assert.Equal(t, 1, tracker.InFlight())
}

func TestTracker_BeginRejectedWhileDraining(t *testing.T) {
	tracker := drain.NewTracker()

	require.True(t, tracker.WaitForDrain(time.Millisecond))

	err := tracker.Begin()
	assert.ErrorIs(t, err, drain.ErrDraining)
	assert.Equal(t, 0, tracker.InFlight())
}

func TestTracker_ConcurrentHandlers(t *testing.T) {
	tracker := drain.NewTracker()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if err := tracker.Begin(); err != nil {
				return
			}
			defer tracker.End()
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, tracker.InFlight())
	assert.True(t, tracker.WaitForDrain(time.Second))
}
