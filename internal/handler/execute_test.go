package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadim/script-playground/internal/apperror"
	"github.com/nadim/script-playground/internal/handler"
	"github.com/nadim/script-playground/internal/sandbox"
)

// mockRunner implements handler.ExecutionRunner without a real VM.
type mockRunner struct {
	capturedReq sandbox.ExecutionRequest
	returnRes   *sandbox.ExecutionResult
	returnErr   error
	history     []sandbox.HistoryEntry
	cleared     bool
}

func (m *mockRunner) Execute(_ context.Context, req sandbox.ExecutionRequest) (*sandbox.ExecutionResult, error) {
	m.capturedReq = req
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.returnRes, nil
}

func (m *mockRunner) History() []sandbox.HistoryEntry {
	return m.history
}

func (m *mockRunner) ClearHistory() {
	m.cleared = true
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExecuteHandler_HandleExecute(t *testing.T) {
	t.Run("valid execution", func(t *testing.T) {
		mock := &mockRunner{
			returnRes: &sandbox.ExecutionResult{
				RequestID: "req-1",
				Output: []sandbox.OutputLine{
					{Level: sandbox.LevelLog, Rendered: "1", Sequence: 0},
					{Level: sandbox.LevelLog, Rendered: "2", Sequence: 1},
				},
				ThrownErrors:        []string{},
				DurationMs:          1.5,
				Outcome:             sandbox.OutcomeCompleted,
				ReturnValueRendered: "3",
			},
		}
		h := handler.NewExecuteHandler(mock, testLogger())

		reqBody := `{"source":"log(1); log(2); return 3;","timeoutMs":2000}`
		req := httptest.NewRequest(http.MethodPost, "/api/execute", bytes.NewBufferString(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res sandbox.ExecutionResult
		err := json.NewDecoder(rr.Body).Decode(&res)
		assert.NoError(t, err)
		assert.Equal(t, sandbox.OutcomeCompleted, res.Outcome)
		assert.Equal(t, "3", res.ReturnValueRendered)
		assert.Len(t, res.Output, 2)

		assert.Equal(t, "log(1); log(2); return 3;", mock.capturedReq.Source)
		assert.Equal(t, 2000, mock.capturedReq.TimeoutMs)
	})

	t.Run("script failure still responds 200", func(t *testing.T) {
		mock := &mockRunner{
			returnRes: &sandbox.ExecutionResult{
				RequestID:    "req-2",
				Output:       []sandbox.OutputLine{},
				ThrownErrors: []string{"boom"},
				Outcome:      sandbox.OutcomeThrew,
			},
		}
		h := handler.NewExecuteHandler(mock, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/execute",
			bytes.NewBufferString(`{"source":"throw new Error('boom')"}`))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res sandbox.ExecutionResult
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, sandbox.OutcomeThrew, res.Outcome)
		assert.Equal(t, []string{"boom"}, res.ThrownErrors)
	})

	t.Run("invalid request body", func(t *testing.T) {
		h := handler.NewExecuteHandler(&mockRunner{}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/execute",
			bytes.NewBufferString(`{"invalid_json":`))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation error from service", func(t *testing.T) {
		mock := &mockRunner{
			returnErr: apperror.ValidationFailed("source", "source is required"),
		}
		h := handler.NewExecuteHandler(mock, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/execute",
			bytes.NewBufferString(`{"source":""}`))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
	})
}

func TestExecuteHandler_HandleHistory(t *testing.T) {
	t.Run("returns entries", func(t *testing.T) {
		mock := &mockRunner{
			history: []sandbox.HistoryEntry{
				{SourceSnapshot: "return 2;", Result: sandbox.ExecutionResult{RequestID: "b"}},
				{SourceSnapshot: "return 1;", Result: sandbox.ExecutionResult{RequestID: "a"}},
			},
		}
		h := handler.NewExecuteHandler(mock, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		rr := httptest.NewRecorder()

		h.HandleHistory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var entries []sandbox.HistoryEntry
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
		assert.Len(t, entries, 2)
		assert.Equal(t, "b", entries[0].Result.RequestID)
	})

	t.Run("empty history encodes as empty array", func(t *testing.T) {
		h := handler.NewExecuteHandler(&mockRunner{}, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		rr := httptest.NewRecorder()

		h.HandleHistory(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())
	})
}

func TestExecuteHandler_HandleClearHistory(t *testing.T) {
	mock := &mockRunner{}
	h := handler.NewExecuteHandler(mock, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/history", nil)
	rr := httptest.NewRecorder()

	h.HandleClearHistory(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, mock.cleared)
}
