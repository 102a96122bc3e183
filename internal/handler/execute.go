package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nadim/script-playground/internal/sandbox"
)

// ExecutionRunner is the slice of the execution service this handler
// needs. *service.ExecutionService satisfies it; tests substitute a mock.
type ExecutionRunner interface {
	Execute(ctx context.Context, req sandbox.ExecutionRequest) (*sandbox.ExecutionResult, error)
	History() []sandbox.HistoryEntry
	ClearHistory()
}

// ExecuteHandler serves script execution and the execution history.
type ExecuteHandler struct {
	runner ExecutionRunner
	logger *slog.Logger
}

func NewExecuteHandler(runner ExecutionRunner, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		runner: runner,
		logger: logger,
	}
}

// HandleExecute runs a submitted script.
//
// POST /api/execute
// Body: {"source": "...", "timeoutMs": 5000}
//
// Script failures (throw, timeout, compile error) respond 200 with the
// outcome in the body; only malformed requests and queue-wait
// cancellations produce error statuses.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req sandbox.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := h.runner.Execute(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleHistory returns past executions, newest first.
//
// GET /api/history
func (h *ExecuteHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.runner.History()
	if entries == nil {
		entries = []sandbox.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleClearHistory discards all recorded executions.
//
// DELETE /api/history
func (h *ExecuteHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	h.runner.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}
