// Package server wires the HTTP router, the services and the sandbox
// engine together and owns the server lifecycle. main.go only builds a
// Config and calls Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nadim/script-playground/internal/auth"
	"github.com/nadim/script-playground/internal/catalog"
	"github.com/nadim/script-playground/internal/handler"
	"github.com/nadim/script-playground/internal/middleware"
	sqliteRepo "github.com/nadim/script-playground/internal/repository/sqlite"
	"github.com/nadim/script-playground/internal/sandbox/engine"
	"github.com/nadim/script-playground/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	// Sandbox tuning. Zero values fall back to engine defaults.
	SandboxTimeout    time.Duration
	SandboxMaxTimeout time.Duration

	// GitHub login is enabled only when JWTSecret and the client
	// credentials are all set.
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server bundles the router with the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, sandbox engine,
// services, handlers, routes. Layers only receive the interfaces they
// need; the handlers never touch the database directly.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if s.config.SandboxTimeout > 0 {
		cfg.DefaultTimeout = s.config.SandboxTimeout
	}
	if s.config.SandboxMaxTimeout > 0 {
		cfg.MaxTimeout = s.config.SandboxMaxTimeout
	}
	return cfg
}

// authEnabled reports whether the GitHub login flow can be wired.
func (s *Server) authEnabled() bool {
	return s.config.JWTSecret != "" &&
		s.config.GitHubClientID != "" &&
		s.config.GitHubClientSecret != ""
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	playgroundHandler, err := handler.NewPlaygroundHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating playground handler: %w", err)
	}
	s.router.Get("/", playgroundHandler.HandlePlayground)

	runner := engine.New(s.engineConfig(), s.logger)
	executionService := service.NewExecutionService(runner, s.logger)
	executeHandler := handler.NewExecuteHandler(executionService, s.logger)

	snippetService := service.NewSnippetService(s.db, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	catalogHandler := handler.NewCatalogHandler(catalog.New(), s.logger)

	var tokens *auth.TokenService
	if s.authEnabled() {
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	}

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			// Reads and writes both see the caller's identity when a
			// valid token cookie is present; ownership checks happen in
			// the snippet service.
			r.Use(auth.OptionalAuth(tokens))
		}

		r.Post("/execute", executeHandler.HandleExecute)
		r.Get("/history", executeHandler.HandleHistory)
		r.Delete("/history", executeHandler.HandleClearHistory)

		r.Get("/catalog", catalogHandler.HandleList)
		r.Get("/catalog/{id}", catalogHandler.HandleGet)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
		r.Post("/snippets", snippetHandler.HandleCreate)
		r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
		r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
	})

	if tokens != nil {
		authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authHandler := handler.NewAuthHandler(github, authService, s.logger)

		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		s.router.Post("/auth/logout", authHandler.HandleLogout)

		s.router.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/api/me", authHandler.HandleMe)
		})
	} else {
		s.logger.Warn("GitHub login disabled, set JWT_SECRET and GitHub credentials to enable")
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: in-flight requests get 30 seconds to finish before the
// database connection is closed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
