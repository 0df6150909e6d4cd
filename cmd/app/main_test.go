package main

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"warehouse/internal/pkg/shutdown"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ListenerFailureTriggersShutdown(t *testing.T) {
	// Occupy a port so the server cannot bind.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := shutdown.NewOrchestrator(logger, 5*time.Second)

	e := echo.New()
	e.HideBanner = true

	done := make(chan int, 1)
	go func() {
		done <- serve(e, ln.Addr().String(), orchestrator, logger)
	}()

	select {
	case code := <-done:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after listener failure")
	}

	assert.Equal(t, shutdown.Terminated, orchestrator.State())
}
