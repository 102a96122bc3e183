package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadim/script-playground/internal/apperror"
	"github.com/nadim/script-playground/internal/sandbox"
)

// ExecutionService validates execution requests and delegates to the
// sandbox runner. Script failures are not errors here: the runner settles
// them into the result's outcome, and the handler returns 200 either way.
type ExecutionService struct {
	runner sandbox.Runner
	logger *slog.Logger
}

func NewExecutionService(runner sandbox.Runner, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		runner: runner,
		logger: logger,
	}
}

// Execute runs one script and returns its result.
func (s *ExecutionService) Execute(ctx context.Context, req sandbox.ExecutionRequest) (*sandbox.ExecutionResult, error) {
	if req.Source == "" {
		return nil, apperror.ValidationFailed("source", "source is required")
	}
	if len(req.Source) > MaxSourceLength {
		return nil, apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxSourceLength))
	}
	if req.TimeoutMs < 0 {
		return nil, apperror.ValidationFailed("timeoutMs", "timeoutMs must not be negative")
	}

	result, err := s.runner.Run(ctx, req)
	if err != nil {
		s.logger.Error("execution request never ran", slog.String("error", err.Error()))
		return nil, fmt.Errorf("running script: %w", err)
	}

	return result, nil
}

// History returns past execution results, newest first.
func (s *ExecutionService) History() []sandbox.HistoryEntry {
	return s.runner.History()
}

// ClearHistory discards all recorded executions.
func (s *ExecutionService) ClearHistory() {
	s.runner.ClearHistory()
	s.logger.Info("execution history cleared")
}
