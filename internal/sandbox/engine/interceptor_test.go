package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadim/script-playground/internal/sandbox"
)

func TestCaptureSequencesFromZero(t *testing.T) {
	i := NewInterceptor()

	capture, err := i.Acquire(context.Background())
	require.NoError(t, err)

	capture.Append(sandbox.LevelLog, "first")
	capture.Append(sandbox.LevelWarn, "second")

	lines := capture.Release()
	require.Len(t, lines, 2)
	assert.Equal(t, 0, lines[0].Sequence)
	assert.Equal(t, 1, lines[1].Sequence)
	assert.Equal(t, "first", lines[0].Rendered)
	assert.Equal(t, sandbox.LevelWarn, lines[1].Level)
}

func TestCaptureReleaseIsIdempotent(t *testing.T) {
	i := NewInterceptor()

	capture, err := i.Acquire(context.Background())
	require.NoError(t, err)
	capture.Append(sandbox.LevelLog, "line")

	first := capture.Release()
	second := capture.Release()
	assert.Equal(t, first, second)

	// The slot was freed exactly once, so a fresh acquire succeeds.
	next, err := i.Acquire(context.Background())
	require.NoError(t, err)
	next.Release()
}

func TestCaptureDropsAppendsAfterRelease(t *testing.T) {
	i := NewInterceptor()

	capture, err := i.Acquire(context.Background())
	require.NoError(t, err)
	capture.Append(sandbox.LevelLog, "kept")
	capture.Release()

	capture.Append(sandbox.LevelLog, "dropped")

	lines := capture.Release()
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0].Rendered)
}

func TestAcquireQueuesUntilRelease(t *testing.T) {
	i := NewInterceptor()

	holder, err := i.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan *Capture)
	go func() {
		c, err := i.Acquire(context.Background())
		require.NoError(t, err)
		acquired <- c
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while slot was held")
	case <-time.After(30 * time.Millisecond):
	}

	holder.Release()

	select {
	case c := <-acquired:
		c.Release()
	case <-time.After(time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	i := NewInterceptor()

	holder, err := i.Acquire(context.Background())
	require.NoError(t, err)
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	capture, err := i.Acquire(ctx)
	assert.Nil(t, capture)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
