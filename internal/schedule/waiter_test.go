package schedule

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/testmate/internal/logging"
)

func quiet(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf, &buf)
	t.Cleanup(func() { logging.SetOutput(nil, nil) })
	return &buf
}

func TestWaitUntil_PastTime(t *testing.T) {
	buf := quiet(t)

	start := time.Now()
	err := WaitUntil(context.Background(), time.Now().Add(-time.Hour))

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "should return immediately for past time")
	assert.Empty(t, buf.String())
}

func TestWaitUntil_FutureTime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping wait test in short mode")
	}
	buf := quiet(t)

	target := time.Now().Add(300 * time.Millisecond)
	start := time.Now()
	err := WaitUntil(context.Background(), target)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Contains(t, buf.String(), "Waiting until")
}

func TestWaitUntil_ContextCancellation(t *testing.T) {
	quiet(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := WaitUntil(ctx, time.Now().Add(10*time.Second))

	assert.Equal(t, context.Canceled, err)
	assert.Less(t, time.Since(start), time.Second, "should cancel quickly")
}

func TestAdaptiveInterval(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      time.Duration
	}{
		{2 * time.Hour, 60 * time.Second},
		{time.Hour, 30 * time.Second},
		{11 * time.Minute, 30 * time.Second},
		{10 * time.Minute, 10 * time.Second},
		{time.Minute, time.Second},
		{500 * time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, adaptiveInterval(tt.remaining), "remaining %s", tt.remaining)
	}
}
