package engine

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

// Interrupt reasons, used to tell a deadline interrupt apart from a
// caller-initiated cancellation when classifying the run's error.
const (
	reasonTimeout   = "execution timeout exceeded"
	reasonCancelled = "execution cancelled"
)

// watchdog bounds a run from outside the interpreter's thread. Unlike an
// in-thread deadline check, vm.Interrupt preempts even a tight synchronous
// loop, so `while(true){}` is reported as TimedOut instead of hanging the
// caller.
type watchdog struct {
	done    chan struct{}
	stopped chan struct{}
}

// armWatchdog starts the deadline race for one run. Whichever fires first,
// the deadline timer or the caller's context, interrupts the VM with a
// distinguishable reason. disarm must be called once the run settles.
func armWatchdog(vm *goja.Runtime, ctx context.Context, deadline time.Time) *watchdog {
	w := &watchdog{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	timer := time.NewTimer(time.Until(deadline))

	go func() {
		defer close(w.stopped)
		defer timer.Stop()
		select {
		case <-timer.C:
			vm.Interrupt(reasonTimeout)
		case <-ctx.Done():
			vm.Interrupt(reasonCancelled)
		case <-w.done:
		}
	}()

	return w
}

// disarm stops the watchdog and waits for its goroutine to exit. Once it
// returns, no further interrupt can be issued, so the caller's
// vm.ClearInterrupt leaves the VM with no stale interrupt pending.
func (w *watchdog) disarm() {
	close(w.done)
	<-w.stopped
}
