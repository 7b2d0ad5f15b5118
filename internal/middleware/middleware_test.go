package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-todo/internal/config"
	"github.com/deppfellow/go-todo/internal/errs"
	"github.com/deppfellow/go-todo/internal/lib/metrics"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(rps float64) *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "8080",
				CORSAllowedOrigins: []string{"*"},
				RateLimitRPS:       rps,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:  &log,
		Metrics: metrics.New("todo-api"),
	}
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	mw := NewMiddlewares(s)
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(
		RequestID(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Metrics.RecordRequests(),
		mw.RateLimit.Limit(),
	)
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := newTestEcho(newTestServer(0))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", rec.Body.String())
	})
}

func TestEnhanceContext(t *testing.T) {
	e := newTestEcho(newTestServer(0))
	e.GET("/ping", func(c echo.Context) error {
		fromEcho := GetLogger(c)
		fromCtx := LoggerFromContext(c.Request().Context())
		assert.Same(t, fromEcho, fromCtx)
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "http error passes through",
			err:        errs.NewBadRequestError("Title is required", true, nil, nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantError:  "Title is required",
		},
		{
			name:       "missing row becomes not found",
			err:        sqlerr.WithTable("todos", pgx.ErrNoRows),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantError:  "Todo not found",
		},
		{
			name:       "driver error keeps its message",
			err:        errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantError:  "dial tcp 127.0.0.1:5432: connect: connection refused",
		},
		{
			name: "postgres error is a 500 with the driver message",
			err: sqlerr.WithTable("todos", &pgconn.PgError{
				Code:       "23502",
				Message:    `null value in column "title" violates not-null constraint`,
				TableName:  "todos",
				ColumnName: "title",
			}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "TODO_REQUIRED",
			wantError:  `null value in column "title" violates not-null constraint`,
		},
		{
			name:       "echo error keeps its status",
			err:        echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_ALLOWED",
			wantError:  "Method Not Allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(newTestServer(0))
			e.GET("/fail", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Message)
		})
	}
}

func TestGlobalErrorHandler_RouteNotFound(t *testing.T) {
	s := newTestServer(0)
	e := newTestEcho(s)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeError(t, rec).Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.Metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
}

func TestRecordRequests(t *testing.T) {
	s := newTestServer(0)
	e := newTestEcho(s)
	e.GET("/api/todos/:id", func(c echo.Context) error {
		return errs.NewNotFoundError("Todo not found", true, nil)
	})

	for range 2 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos/42", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		s.Metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/todos/:id", "404")))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(1)
	e := newTestEcho(s)
	e.GET("/api/todos", func(c echo.Context) error { return c.JSON(http.StatusOK, []string{}) })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/api/todos").Code)

	rec := get("/api/todos")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, rec).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RateLimitedTotal.WithLabelValues("/api/todos")))

	for range 3 {
		assert.Equal(t, http.StatusOK, get("/health").Code, "system routes are not limited")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := newTestEcho(newTestServer(0))
	e.GET("/api/todos", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for range 20 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(nil, http.StatusOK))
	assert.Equal(t, http.StatusNotFound, statusFromError(errs.NewNotFoundError("x", false, nil), http.StatusOK))
	assert.Equal(t, http.StatusConflict, statusFromError(echo.NewHTTPError(http.StatusConflict), http.StatusOK))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(errors.New("boom"), http.StatusOK))
}
