package engine

import (
	"fmt"
	"time"

	"github.com/nadim/script-playground/internal/sandbox"
)

// aggregateResult normalizes captured output, thrown errors, outcome and
// timing into one ExecutionResult. It never panics outward: any internal
// failure degrades to a synthetic Threw result so the caller always
// receives something well-formed.
func aggregateResult(requestID string, output []sandbox.OutputLine, thrown []string, outcome sandbox.Outcome, elapsed time.Duration, returnRendered string) (result *sandbox.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &sandbox.ExecutionResult{
				RequestID:    requestID,
				Output:       []sandbox.OutputLine{},
				ThrownErrors: []string{fmt.Sprintf("internal error while aggregating result: %v", r)},
				DurationMs:   durationMs(elapsed),
				Outcome:      sandbox.OutcomeThrew,
			}
		}
	}()

	if output == nil {
		output = []sandbox.OutputLine{}
	}
	if thrown == nil {
		thrown = []string{}
	}

	return &sandbox.ExecutionResult{
		RequestID:           requestID,
		Output:              output,
		ThrownErrors:        thrown,
		DurationMs:          durationMs(elapsed),
		Outcome:             outcome,
		ReturnValueRendered: returnRendered,
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
