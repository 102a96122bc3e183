// Package handler contains the HTTP layer: request parsing, response
// writing and nothing else. Business rules live in the service package.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// PlaygroundHandler serves the editor page. Templates are parsed once at
// startup and reused.
type PlaygroundHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewPlaygroundHandler parses the page templates. base.html holds the
// page frame, playground.html fills its content block.
func NewPlaygroundHandler(templateDir string, logger *slog.Logger) (*PlaygroundHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "playground.html"),
	)
	if err != nil {
		return nil, err
	}

	return &PlaygroundHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandlePlayground renders the editor page.
//
// GET /
func (h *PlaygroundHandler) HandlePlayground(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Script Playground",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
