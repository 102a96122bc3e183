// Package sandbox defines the types and interface for the embedded
// JavaScript execution sandbox.
//
// The sandbox accepts arbitrary user-submitted source text, evaluates it
// against a restricted set of bindings, captures all diagnostic output and
// thrown errors, bounds execution time, and returns a structured result.
// Nothing that happens inside a run (output, exceptions, timeouts) ever
// escapes to the hosting application as an unhandled fault.
//
// The concrete implementation lives in the engine subpackage; this package
// only holds the contract, so consumers (HTTP handlers, tests) never import
// the interpreter directly.
package sandbox

import (
	"context"
	"time"
)

// Level classifies a captured diagnostic line.
type Level string

const (
	LevelLog   Level = "log"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Outcome is the terminal classification of one execution.
type Outcome string

const (
	// OutcomeCompleted: the script ran to the end of its body and all
	// scheduled timer callbacks without throwing.
	OutcomeCompleted Outcome = "Completed"
	// OutcomeThrew: the script failed to compile, threw an exception, or
	// was cancelled by the caller.
	OutcomeThrew Outcome = "Threw"
	// OutcomeTimedOut: the wall-clock deadline fired before the script
	// settled.
	OutcomeTimedOut Outcome = "TimedOut"
)

// ExecutionRequest describes one run of user-submitted source text.
// It is treated as immutable once submitted.
type ExecutionRequest struct {
	Source    string `json:"source"`
	TimeoutMs int    `json:"timeoutMs"` // <= 0 means the engine default (5000)
}

// OutputLine is one captured diagnostic call (log/info/warn/error).
// Sequence is monotonic from 0 within a single request and strictly
// reflects invocation order.
type OutputLine struct {
	Level    Level  `json:"level"`
	Rendered string `json:"rendered"`
	Sequence int    `json:"sequence"`
}

// ExecutionResult is the aggregate outcome of one request. It is produced
// exactly once per accepted request and never mutated afterwards; Outcome
// and DurationMs are always set together.
type ExecutionResult struct {
	RequestID           string       `json:"requestId"`
	Output              []OutputLine `json:"output"`
	ThrownErrors        []string     `json:"thrownErrors"`
	DurationMs          float64      `json:"durationMs"`
	Outcome             Outcome      `json:"outcome"`
	ReturnValueRendered string       `json:"returnValueRendered,omitempty"`
}

// HistoryEntry pairs a result with the source that produced it.
// Entries are owned exclusively by the history store.
type HistoryEntry struct {
	Result         ExecutionResult `json:"result"`
	SourceSnapshot string          `json:"sourceSnapshot"`
	StartedAt      time.Time       `json:"startedAt"`
}

// HistoryCapacity is the fixed size of the execution history ring.
// Appending beyond capacity evicts the oldest entry.
const HistoryCapacity = 10

// Runner is the single logical entry point consumed by the display layer.
//
// Run resolves with a well-formed result for every accepted request:
// compile errors, runtime throws, and timeouts are all encoded in the
// result's Outcome rather than returned as errors. The only error path is
// a request that was never accepted: runs are serialized, and if the
// caller's context ends while the request is still queued behind another
// execution, Run returns the context's error and no result exists for the
// request.
type Runner interface {
	Run(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
	History() []HistoryEntry
	ClearHistory()
}
