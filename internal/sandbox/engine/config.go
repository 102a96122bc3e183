package engine

import (
	"time"

	"github.com/nadim/script-playground/internal/sandbox"
)

// Config holds the configuration for the sandbox engine.
type Config struct {
	// DefaultTimeout is applied when a request carries no timeout.
	DefaultTimeout time.Duration
	// MaxTimeout is the upper bound for a requested timeout.
	MaxTimeout time.Duration
	// TimerDelayCap clamps setTimeout/setInterval delays so a script cannot
	// schedule work that outlives the sandbox's own timeout window.
	TimerDelayCap time.Duration
	// MaxCallStackSize bounds the interpreter call stack depth.
	MaxCallStackSize int
	// HistoryCapacity is the size of the execution history ring.
	HistoryCapacity int
}

// DefaultConfig provides sensible defaults for the playground sandbox.
func DefaultConfig() Config {
	return Config{
		// 5 second default execution deadline
		DefaultTimeout: 5 * time.Second,
		MaxTimeout:     30 * time.Second,
		TimerDelayCap:  5 * time.Second,
		// deep enough for real recursion, shallow enough to fail fast
		MaxCallStackSize: 512,
		HistoryCapacity:  sandbox.HistoryCapacity,
	}
}

// effectiveTimeout normalizes a requested timeout in milliseconds against
// the configured default and maximum.
func (c Config) effectiveTimeout(timeoutMs int) time.Duration {
	if timeoutMs <= 0 {
		return c.DefaultTimeout
	}
	d := time.Duration(timeoutMs) * time.Millisecond
	if d > c.MaxTimeout {
		return c.MaxTimeout
	}
	return d
}
