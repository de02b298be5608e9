// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the configured repository and
// wires repository → CompanyService → CompanyHandler, then mounts the
// handlers on a chi router. Keeping it out of main makes the whole stack
// testable through Handler() with httptest.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/applytrack/internal/handler"
	"github.com/sakif/applytrack/internal/metrics"
	"github.com/sakif/applytrack/internal/middleware"
	"github.com/sakif/applytrack/internal/repository"
	"github.com/sakif/applytrack/internal/repository/postgres"
	sqliteRepo "github.com/sakif/applytrack/internal/repository/sqlite"
	"github.com/sakif/applytrack/internal/service"
)

// Supported values of Config.DBDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DBDriver    string   // "sqlite" (default) or "postgres"
	DBPath      string   // SQLite file, or ":memory:"
	DatabaseURL string   // Postgres DSN
	CORSOrigins []string // defaults to ["*"]
}

// Store is what the server needs from a repository backend.
type Store interface {
	repository.CompanyRepository
	repository.Pinger
	Close() error
}

// Server represents the HTTP server and all its dependencies.
//
// The server owns the database connection and closes it on shutdown.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      Store
	metrics *metrics.Metrics
}

// New opens the repository named by cfg and builds the router.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := openStore(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return NewWithStore(cfg, db, logger), nil
}

// NewWithStore builds a server over an already-open store.
func NewWithStore(cfg Config, db Store, logger *slog.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}
	s.setupRoutes()
	return s
}

func openStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.DBDriver {
	case "", DriverSQLite:
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
//
//	GET    /api/companies → list
//	POST   /api/companies → create
//	PATCH  /api/companies → update (id in body)
//	DELETE /api/companies → delete (id in body)
//	GET    /healthz       → repository ping
//	GET    /metrics       → Prometheus
//
// Anything else, including a known path with the wrong method, is a 404
// "Route not found".
//
// MIDDLEWARE ORDER: RequestID first so the logger can print it; CORS before
// routing so preflight OPTIONS requests are answered even though no route
// registers OPTIONS.
func (s *Server) setupRoutes() {
	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(s.metrics.Instrument)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.NotFound(handler.HandleNotFound)
	s.router.MethodNotAllowed(handler.HandleNotFound)

	companyService := service.NewCompanyService(s.db, s.logger)
	companyHandler := handler.NewCompanyHandler(companyService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/api/companies", companyHandler.HandleList)
	s.router.Post("/api/companies", companyHandler.HandleCreate)
	s.router.Patch("/api/companies", companyHandler.HandleUpdate)
	s.router.Delete("/api/companies", companyHandler.HandleDelete)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully: stop accepting connections, give in-flight requests up
// to 30 seconds, close the database.
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
			slog.String("driver", s.driverName()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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

func (s *Server) driverName() string {
	if s.config.DBDriver == "" {
		return DriverSQLite
	}
	return s.config.DBDriver
}
