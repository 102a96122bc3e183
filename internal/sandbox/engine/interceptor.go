package engine

import (
	"context"
	"sync"

	"github.com/nadim/script-playground/internal/sandbox"
)

// Interceptor arbitrates access to the diagnostic-output capture buffer.
// Only one execution may hold a capture at a time; a second caller queues
// on Acquire until the current holder releases. This is what guarantees
// that two back-to-back runs can never interleave their output lines.
type Interceptor struct {
	slot chan struct{}
}

// NewInterceptor creates an Interceptor with a single execution slot.
func NewInterceptor() *Interceptor {
	return &Interceptor{slot: make(chan struct{}, 1)}
}

// Acquire obtains a fresh capture buffer, blocking while another execution
// holds the slot. Returns the context's error if it ends before the slot
// becomes available; in that case the request was never accepted.
func (i *Interceptor) Acquire(ctx context.Context) (*Capture, error) {
	select {
	case i.slot <- struct{}{}:
		return &Capture{owner: i}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Capture is one execution's private output buffer. It assigns sequence
// numbers in append order, starting at 0.
type Capture struct {
	owner    *Interceptor
	mu       sync.Mutex
	lines    []sandbox.OutputLine
	released bool
}

// Append records one rendered diagnostic line. Appends after release are
// dropped.
func (c *Capture) Append(level sandbox.Level, rendered string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.lines = append(c.lines, sandbox.OutputLine{
		Level:    level,
		Rendered: rendered,
		Sequence: len(c.lines),
	})
}

// Release frees the execution slot and returns the captured lines.
// Idempotent: a second call returns the same lines without touching the
// slot, so it is safe to both defer Release and call it explicitly.
func (c *Capture) Release() []sandbox.OutputLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return c.lines
	}
	c.released = true
	<-c.owner.slot
	return c.lines
}
