package engine

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/nadim/script-playground/internal/sandbox"
)

// allowedGlobals is the allow-list of names a script may see from the
// interpreter's default global object. Everything else on a fresh VM is
// pruned before user code runs. Deliberately absent: eval, Function,
// Reflect, Proxy and the binary-buffer constructors.
var allowedGlobals = []string{
	"Object", "Array", "String", "Number", "Boolean", "BigInt", "Symbol",
	"Math", "Date", "JSON", "RegExp",
	"Map", "Set", "WeakMap", "WeakSet", "Promise",
	"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError",
	"EvalError", "URIError", "AggregateError",
	"parseInt", "parseFloat", "isNaN", "isFinite",
	"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent",
	"NaN", "Infinity", "undefined", "globalThis",
}

// pruneGlobals removes every global name not in the keep set. Replacing
// with undefined and then deleting covers both configurable and merely
// writable properties; non-configurable, non-writable ones are left as-is
// (they are all in the keep set anyway).
const pruneGlobals = `(function (keep) {
	'use strict';
	var names = Object.getOwnPropertyNames(this);
	for (var i = 0; i < names.length; i++) {
		if (keep[names[i]] !== true) {
			try { this[names[i]] = undefined; } catch (e) {}
			try { delete this[names[i]]; } catch (e) {}
		}
	}
})`

// installBindings builds the per-run binding set on a fresh VM: it prunes
// the global object down to the allow-list, then injects the diagnostic
// functions and the capped cooperative timers. Each call receives its own
// capture buffer and timer queue, so two binding sets are fully
// independent.
func installBindings(vm *goja.Runtime, capture *Capture, timers *timerQueue) error {
	pruneVal, err := vm.RunString(pruneGlobals)
	if err != nil {
		return fmt.Errorf("engine: compiling global prune helper: %w", err)
	}
	prune, ok := goja.AssertFunction(pruneVal)
	if !ok {
		return fmt.Errorf("engine: global prune helper is not callable")
	}

	keep := make(map[string]bool, len(allowedGlobals))
	for _, name := range allowedGlobals {
		keep[name] = true
	}
	if _, err := prune(vm.GlobalObject(), vm.ToValue(keep)); err != nil {
		return fmt.Errorf("engine: pruning globals: %w", err)
	}

	if err := installDiagnostics(vm, capture); err != nil {
		return err
	}
	return installTimers(vm, timers)
}

// installDiagnostics binds log/info/warn/error as bare globals and as a
// console object. Both forward rendered lines to the capture buffer; no
// call ever reaches a real output sink.
func installDiagnostics(vm *goja.Runtime, capture *Capture) error {
	diagnostic := func(level sandbox.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			capture.Append(level, renderArgs(call.Arguments))
			return goja.Undefined()
		}
	}

	levels := map[string]sandbox.Level{
		"log":   sandbox.LevelLog,
		"info":  sandbox.LevelInfo,
		"warn":  sandbox.LevelWarn,
		"error": sandbox.LevelError,
	}

	console := vm.NewObject()
	for name, level := range levels {
		fn := diagnostic(level)
		if err := vm.Set(name, fn); err != nil {
			return fmt.Errorf("engine: binding %s: %w", name, err)
		}
		if err := console.Set(name, fn); err != nil {
			return fmt.Errorf("engine: binding console.%s: %w", name, err)
		}
	}
	// console.debug is an alias for the log level
	if err := console.Set("debug", diagnostic(sandbox.LevelLog)); err != nil {
		return fmt.Errorf("engine: binding console.debug: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return fmt.Errorf("engine: binding console: %w", err)
	}
	return nil
}

// installTimers binds setTimeout/setInterval/clearTimeout/clearInterval
// against the run-owned timer queue. Requested delays above the cap are
// clamped down to it.
func installTimers(vm *goja.Runtime, timers *timerQueue) error {
	setTimer := func(repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			fn, ok := goja.AssertFunction(call.Argument(0))
			if !ok {
				// Non-callable first argument: nothing to schedule.
				return vm.ToValue(int64(0))
			}
			delay := clampDelay(call.Argument(1).ToInteger(), timers.clampTo)
			var interval time.Duration
			if repeat {
				interval = delay
				if interval < minInterval {
					interval = minInterval
				}
			}
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = append(args, call.Arguments[2:]...)
			}
			return vm.ToValue(timers.schedule(fn, delay, interval, args))
		}
	}
	clearTimer := func(call goja.FunctionCall) goja.Value {
		timers.cancel(call.Argument(0).ToInteger())
		return goja.Undefined()
	}

	bindings := map[string]func(goja.FunctionCall) goja.Value{
		"setTimeout":    setTimer(false),
		"setInterval":   setTimer(true),
		"clearTimeout":  clearTimer,
		"clearInterval": clearTimer,
	}
	for name, fn := range bindings {
		if err := vm.Set(name, fn); err != nil {
			return fmt.Errorf("engine: binding %s: %w", name, err)
		}
	}
	return nil
}
