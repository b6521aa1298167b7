package signal

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestSetupSignalHandler_SignalsInterrupt(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(sig.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var interrupted atomic.Bool
			defer SetupSignalHandler(ctx, cancel, func() { interrupted.Store(true) })()

			require.NoError(t, syscall.Kill(os.Getpid(), sig))
			waitDone(t, ctx)
			assert.True(t, interrupted.Load(), "interrupt is recorded before the context is cancelled")
			assert.ErrorIs(t, ctx.Err(), context.Canceled)
		})
	}
}

func TestSetupSignalHandler_NilCallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer SetupSignalHandler(ctx, cancel, nil)()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	waitDone(t, ctx)
}

func TestSetupSignalHandler_CancelWithoutSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	defer SetupSignalHandler(ctx, cancel, func() { calls.Add(1) })()

	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load(), "a finished command is not an interruption")
}

func TestSetupSignalHandler_CallbackRunsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	stop := SetupSignalHandler(ctx, cancel, func() { calls.Add(1) })
	defer stop()

	// A second handler keeps the process alive when the first one lets go.
	guardCtx, guardCancel := context.WithCancel(context.Background())
	defer guardCancel()
	defer SetupSignalHandler(guardCtx, guardCancel, nil)()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	waitDone(t, ctx)
	waitDone(t, guardCtx)

	assert.Equal(t, int32(1), calls.Load())
}

func TestSetupSignalHandler_StopReleasesHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	stop := SetupSignalHandler(ctx, cancel, func() { calls.Add(1) })
	stop()
	stop()

	guardCtx, guardCancel := context.WithCancel(context.Background())
	defer guardCancel()
	defer SetupSignalHandler(guardCtx, guardCancel, nil)()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	waitDone(t, guardCtx)

	assert.Zero(t, calls.Load())
	assert.NoError(t, ctx.Err())
}
