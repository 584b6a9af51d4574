// Package server is the composition root: it builds the storage
// backend, services, and handlers, wires them onto the router, and
// runs the HTTP server with graceful shutdown.
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

	"github.com/sakif/dev-directory/internal/auth"
	"github.com/sakif/dev-directory/internal/handler"
	"github.com/sakif/dev-directory/internal/middleware"
	"github.com/sakif/dev-directory/internal/repository"
	"github.com/sakif/dev-directory/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/dev-directory/internal/repository/sqlite"
	"github.com/sakif/dev-directory/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	JWTSecret string

	// StoreBackend selects persistence: "file" (default) keeps the
	// whole directory in one JSON document, "sqlite" uses an embedded
	// database.
	StoreBackend string
	DataPath     string // JSON document path, file backend
	DBPath       string // database path, sqlite backend

	// GitHub OAuth is enabled only when all three are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the storage backend. The backend's
// closer runs during shutdown so pending writes are flushed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	closer func() error
}

// New assembles the full dependency chain:
// store → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	passwords := auth.NewPasswordService()

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	var (
		developers repository.DeveloperRepository
		users      repository.UserRepository
		closer     = func() error { return nil }
	)
	switch cfg.StoreBackend {
	case "", "file":
		store, err := jsonfile.New(cfg.DataPath, passwords)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		developers, users = store, store.Users()
	case "sqlite":
		db, err := sqliteRepo.New(cfg.DBPath, passwords)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		developers, users = db, db.Users()
		closer = db.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q (want file or sqlite)", cfg.StoreBackend)
	}

	var github *auth.GitHubProvider
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" && cfg.GitHubCallbackURL != "" {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}
	s.setupRoutes(developers, users, tokens, passwords, github)

	return s, nil
}

// Router exposes the configured handler chain, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(
	developers repository.DeveloperRepository,
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	github *auth.GitHubProvider,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	directory := service.NewDirectoryService(developers, s.logger)
	auths := service.NewAuthService(users, tokens, passwords, s.logger)

	devHandler := handler.NewDeveloperHandler(directory, s.logger)
	authHandler := handler.NewAuthHandler(auths, github, s.logger)

	// Public: account creation and login.
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// Browser OAuth flow, mounted only when credentials are configured.
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// Everything else sits behind the credential gate, reads included.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/api/me", authHandler.HandleMe)

		r.Route("/api/developers", func(r chi.Router) {
			r.Get("/", devHandler.HandleList)
			r.Post("/", devHandler.HandleCreate)
			r.Get("/{id}", devHandler.HandleGet)
			r.Put("/{id}", devHandler.HandleUpdate)
			r.Delete("/{id}", devHandler.HandleDelete)
		})
	})
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the storage backend.
func (s *Server) Start() error {
	defer func() {
		if err := s.closer(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

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
			slog.String("backend", s.config.StoreBackend),
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
