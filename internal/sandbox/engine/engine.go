// Package engine implements the sandbox.Runner interface on the goja
// JavaScript interpreter.
//
// Every request gets its own short-lived VM: bindings are rebuilt from
// scratch, so no mutable state can leak between runs. The global object is
// pruned down to an allow-list before user code executes, diagnostic calls
// are captured into a per-run buffer, and a watchdog goroutine interrupts
// the VM when the wall-clock deadline fires, including for synchronous
// busy loops, which a purely cooperative deadline check could never stop.
//
// The allow-list restricts which names a script can resolve; it is scope
// restriction, not security isolation. A determined script can still reach
// interpreter internals through reflection on the values it is handed
// (constructor and prototype chains). Treat this as a teaching-grade
// boundary: good enough for a playground, not a substitute for process or
// isolate level sandboxing.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/xid"

	"github.com/nadim/script-playground/internal/sandbox"
)

// compile-time check that *Engine implements sandbox.Runner
var _ sandbox.Runner = (*Engine)(nil)

// Sentinel errors for the cooperative drain loop, classified alongside
// interpreter errors when the run settles.
var (
	errDeadlineExceeded = errors.New("engine: deadline exceeded")
	errRunCancelled     = errors.New("engine: run cancelled")
)

// Engine runs user-submitted JavaScript with restricted bindings, captured
// output and a hard wall-clock deadline. Executions are serialized: a
// second Run queues until the first settles.
type Engine struct {
	config      Config
	logger      *slog.Logger
	interceptor *Interceptor
	history     *History
}

// New creates an Engine with the given configuration.
func New(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		config:      cfg,
		logger:      logger,
		interceptor: NewInterceptor(),
		history:     NewHistory(cfg.HistoryCapacity),
	}
}

// Wrapping the source in a function expression gives scripts a top-level
// `return` and keeps their declarations out of the global object.
const (
	sourceWrapPrefix = "(function () {\n"
	sourceWrapSuffix = "\n})()"
)

func compileSource(source string) (*goja.Program, error) {
	return goja.Compile(sourceFilename, sourceWrapPrefix+source+sourceWrapSuffix, false)
}

const sourceFilename = "playground.js"

// compileErrorLine matches the "Line N:C" references in the compiler's
// messages.
var compileErrorLine = regexp.MustCompile(`Line (\d+):(\d+)`)

// adjustCompileError shifts line references in a compile-error message back
// by the one line the wrapper prefix adds above user code, so the reported
// position matches what the user typed.
func adjustCompileError(msg string) string {
	return compileErrorLine.ReplaceAllStringFunc(msg, func(m string) string {
		sub := compileErrorLine.FindStringSubmatch(m)
		line, err := strconv.Atoi(sub[1])
		if err != nil || line <= 1 {
			return m
		}
		return fmt.Sprintf("Line %d:%s", line-1, sub[2])
	})
}

// Run executes one request and returns its result.
//
// Every accepted request yields a well-formed result: compile errors and
// runtime throws settle as Threw, deadline hits as TimedOut, and the
// result's error list carries the rendered cause. The only error return is
// a context that ends while the request is still queued behind another
// execution; no result exists for the request in that case.
func (e *Engine) Run(ctx context.Context, req sandbox.ExecutionRequest) (*sandbox.ExecutionResult, error) {
	requestID := xid.New().String()
	startedAt := time.Now()
	timeout := e.config.effectiveTimeout(req.TimeoutMs)

	// A syntax error settles the request before any binding or interceptor
	// work happens.
	program, err := compileSource(req.Source)
	if err != nil {
		msg := adjustCompileError(err.Error())
		result := aggregateResult(requestID, nil, []string{msg}, sandbox.OutcomeThrew, time.Since(startedAt), "")
		e.record(result, req.Source, startedAt)
		e.logger.Info("script rejected at compile time",
			slog.String("requestId", requestID),
			slog.String("error", msg),
		)
		return result, nil
	}

	capture, err := e.interceptor.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: waiting for execution slot: %w", err)
	}
	// Release is idempotent; the defer covers every exit path, including a
	// panic out of the interpreter.
	defer capture.Release()

	vm := goja.New()
	vm.SetMaxCallStackSize(e.config.MaxCallStackSize)
	timers := newTimerQueue(e.config.TimerDelayCap)

	if err := installBindings(vm, capture, timers); err != nil {
		result := aggregateResult(requestID, capture.Release(), []string{err.Error()}, sandbox.OutcomeThrew, time.Since(startedAt), "")
		e.record(result, req.Source, startedAt)
		return result, nil
	}

	deadline := startedAt.Add(timeout)
	w := armWatchdog(vm, ctx, deadline)

	value, runErr := vm.RunProgram(program)
	if runErr == nil {
		// Main body finished; run scheduled timer callbacks cooperatively
		// until the queue empties or the deadline wins.
		runErr = e.drainTimers(ctx, vm, timers, deadline)
	}

	w.disarm()
	vm.ClearInterrupt()

	elapsed := time.Since(startedAt)
	output := capture.Release()

	var (
		outcome        sandbox.Outcome
		thrown         []string
		returnRendered string
	)
	if runErr != nil {
		var msg string
		outcome, msg = classify(runErr)
		if msg != "" {
			thrown = append(thrown, msg)
		}
	} else {
		outcome = sandbox.OutcomeCompleted
		if value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
			returnRendered = safeRenderValue(value)
		}
	}

	result := aggregateResult(requestID, output, thrown, outcome, elapsed, returnRendered)
	e.record(result, req.Source, startedAt)

	e.logger.Info("script executed",
		slog.String("requestId", requestID),
		slog.String("outcome", string(result.Outcome)),
		slog.Duration("duration", elapsed),
		slog.Int("outputLines", len(output)),
	)

	return result, nil
}

// drainTimers runs due timer callbacks in order until the queue is empty,
// a callback throws, the deadline passes, or the caller's context ends.
// This is the cooperative half of timeout handling; the watchdog covers
// the non-cooperative half.
func (e *Engine) drainTimers(ctx context.Context, vm *goja.Runtime, timers *timerQueue, deadline time.Time) error {
	for {
		task, ok := timers.pop()
		if !ok {
			return nil
		}
		if task.due.After(deadline) {
			return errDeadlineExceeded
		}
		if wait := time.Until(task.due); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return errRunCancelled
			}
		}
		if _, err := task.fn(goja.Undefined(), task.args...); err != nil {
			return err
		}
		if task.interval > 0 {
			task.due = time.Now().Add(task.interval)
			timers.push(task)
		}
	}
}

// classify maps a run error to its outcome and the text it contributes to
// the result's error list.
func classify(err error) (sandbox.Outcome, string) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if reason, ok := interrupted.Value().(string); ok && reason == reasonCancelled {
			return sandbox.OutcomeThrew, reasonCancelled
		}
		return sandbox.OutcomeTimedOut, ""
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return sandbox.OutcomeThrew, safeErrorText(exception.Value())
	}

	if errors.Is(err, errDeadlineExceeded) {
		return sandbox.OutcomeTimedOut, ""
	}
	if errors.Is(err, errRunCancelled) {
		return sandbox.OutcomeThrew, reasonCancelled
	}

	return sandbox.OutcomeThrew, err.Error()
}

func (e *Engine) record(result *sandbox.ExecutionResult, source string, startedAt time.Time) {
	e.history.Append(sandbox.HistoryEntry{
		Result:         *result,
		SourceSnapshot: source,
		StartedAt:      startedAt,
	})
}

// History returns past execution results, newest first.
func (e *Engine) History() []sandbox.HistoryEntry {
	return e.history.Entries()
}

// ClearHistory discards all recorded executions.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}
