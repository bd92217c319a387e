// Package http is the dashboard-facing REST API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	authService   driving.AuthService
	sourceService driving.SourceService
	fileService   driving.FileService
	usageService  driving.UsageService
	syncService   driving.SyncService
	tokenService  driving.TokenService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	logger *slog.Logger,
	authService driving.AuthService,
	sourceService driving.SourceService,
	fileService driving.FileService,
	usageService driving.UsageService,
	syncService driving.SyncService,
	tokenService driving.TokenService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		logger:        logger,
		authService:   authService,
		sourceService: sourceService,
		fileService:   fileService,
		usageService:  usageService,
		syncService:   syncService,
		tokenService:  tokenService,
		taskQueue:     taskQueue,
		db:            db,
		redisClient:   redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	recovery := NewRecoveryMiddleware(s.logger)
	logging := NewLoggingMiddleware(s.logger)
	cors := NewCORSMiddleware()
	return recovery.Handler(logging.Handler(cors.Handler(s.router)))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Source endpoints (admin-only for mutations)
	s.router.Handle("GET /api/v1/projects/{projectID}/sources",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListSources)))
	s.router.Handle("GET /api/v1/projects/{projectID}/sources/summary",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListSourceSummaries)))
	s.router.Handle("POST /api/v1/projects/{projectID}/sources",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateSource))))
	s.router.Handle("GET /api/v1/sources/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetSource)))
	s.router.Handle("PUT /api/v1/sources/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleUpdateSource))))
	s.router.Handle("DELETE /api/v1/sources/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteSource))))

	// File endpoints
	s.router.Handle("GET /api/v1/projects/{projectID}/files",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListFiles)))
	s.router.Handle("GET /api/v1/projects/{projectID}/files/count",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCountFiles)))
	s.router.Handle("POST /api/v1/projects/{projectID}/files/delete",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteFiles)))

	// Sync endpoints
	s.router.Handle("POST /api/v1/projects/{projectID}/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTriggerSync)))
	s.router.Handle("GET /api/v1/projects/{projectID}/sync/latest",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLatestSyncs)))
	s.router.Handle("GET /api/v1/sources/{id}/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSyncStatus)))
	s.router.Handle("DELETE /api/v1/sources/{id}/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleStopSync)))

	// Token endpoints (admin-only)
	s.router.Handle("GET /api/v1/projects/{projectID}/tokens",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListTokens))))
	s.router.Handle("POST /api/v1/projects/{projectID}/tokens",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateToken))))
	s.router.Handle("DELETE /api/v1/tokens/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteToken))))

	// Usage endpoint
	s.router.Handle("GET /api/v1/teams/{teamID}/usage",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUsage)))

	// Queue stats (admin-only)
	s.router.Handle("GET /api/v1/admin/queue/stats",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleQueueStats))))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
