package signal

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerCancelsOnSignal(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-h.Interrupted():
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not interrupt handler")
	}
	assert.Error(t, h.Context().Err())
}

func TestHandlerStopCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel context")
	}

	// Stop is idempotent.
	h.Stop()
}

func TestHandlerParentCancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHandler(ctx)
	defer h.Stop()

	cancel()
	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not propagate")
	}
}
