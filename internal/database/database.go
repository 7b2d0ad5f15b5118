// Package database contains the logic for establishing
// connections to the PostgreSQL database.
//
// It handles:
//   - building a pgxpool config from the DSN
//   - wiring query tracing/logging (pgx tracelog, slow query log)
//   - optional New Relic instrumentation (nrpgx5)
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/go-todo/internal/config"
	loggerConfig "github.com/deppfellow/go-todo/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Pool is the subset of *pgxpool.Pool the application relies on.
// Repositories and health checks depend on this, not on pgxpool directly,
// so tests can substitute a pgxmock pool.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Database wraps the connection pool and a logger.
type Database struct {
	Pool Pool
	log  *zerolog.Logger
}

// multiTracer allows chaining multiple tracers.
//
// pgx supports a single Tracer in ConnConfig; this adapter fans out to
// every tracer that implements TraceQueryStart/TraceQueryEnd.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is the number of seconds to wait for the startup ping.
const DatabasePingTimeout = 10

// New creates a PostgreSQL connection pool with instrumentation.
//
// Behavior:
//   - Parse the DSN into a pgxpool config
//   - Attach New Relic tracer if available
//   - Always attach the slow query tracer
//   - In local env: attach SQL tracelogger
//   - Create pool, ping it, and return Database
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.ConnConfig.Tracer = buildTracer(cfg, logger, loggerService)

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := &Database{
		Pool: pool,
		log:  logger,
	}

	// Startup fails fast if the database is down.
	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Msg("connected to the database")

	return database, nil
}

// NewWithPool wraps an existing pool, e.g. a pgxmock pool in tests.
func NewWithPool(pool Pool, logger *zerolog.Logger) *Database {
	return &Database{Pool: pool, log: logger}
}

func buildTracer(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) pgx.QueryTracer {
	tracers := []any{}

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if threshold := cfg.Observability.Logging.SlowQueryThreshold; threshold > 0 {
		tracers = append(tracers, &slowQueryTracer{threshold: threshold, log: logger})
	}

	// Full SQL logging is very noisy, so only in local env.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		})
	}

	switch len(tracers) {
	case 0:
		return nil
	case 1:
		if t, ok := tracers[0].(pgx.QueryTracer); ok {
			return t
		}
	}
	return &multiTracer{tracers: tracers}
}

// Close closes the database connection pool.
func (db *Database) Close() error {
	if db.log != nil {
		db.log.Info().Msg("closing database connection pool")
	}
	db.Pool.Close()
	return nil
}
