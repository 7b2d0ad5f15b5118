package server

import (
	"context"
	"testing"

	"github.com/deppfellow/go-todo/internal/config"
	"github.com/deppfellow/go-todo/internal/database"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWithoutSetup(t *testing.T) {
	log := zerolog.Nop()
	s := &Server{Config: &config.Config{}, Logger: &log}

	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}

func TestShutdownClosesPool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.ExpectClose()

	log := zerolog.Nop()
	s := &Server{
		Config: &config.Config{Server: config.ServerConfig{Port: "0"}},
		Logger: &log,
		DB:     database.NewWithPool(mock, &log),
	}
	s.SetupHTTPServer(nil)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
