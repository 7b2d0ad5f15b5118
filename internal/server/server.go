// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - Prometheus metrics
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-todo/internal/config"
	"github.com/deppfellow/go-todo/internal/database"
	"github.com/deppfellow/go-todo/internal/lib/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-todo/internal/logger"
)

// Server is the application container that holds shared resources.
// It is not the HTTP server itself.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, which is nil when
	// New Relic is disabled.
	LoggerService *loggerPkg.LoggerService

	DB      *database.Database
	Metrics *metrics.Metrics

	httpServer *http.Server
}

// New connects to the database and builds the metrics registry.
// It does not start listening; that is SetupHTTPServer + Start.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.New(cfg.Observability.ServiceName)
	if pool, ok := db.Pool.(*pgxpool.Pool); ok {
		m.RegisterPoolStats(pool.Stat)
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Metrics:       m,
	}, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
// Timeouts in config are seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then closes the pool
// and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	s.LoggerService.Shutdown()

	return nil
}
