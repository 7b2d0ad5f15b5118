package middleware

import (
	"errors"
	"time"

	"github.com/deppfellow/go-todo/internal/server"
	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

type MetricsMiddleware struct {
	server *server.Server
}

func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

// RecordRequests records count, latency and response size per route template.
func (m *MetricsMiddleware) RecordRequests() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.server.Metrics == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" || errors.Is(err, echo.ErrNotFound) {
				route = unmatchedRoute
			}

			m.server.Metrics.RecordHTTPRequest(
				c.Request().Method,
				route,
				statusFromError(err, c.Response().Status),
				time.Since(start),
				c.Response().Size,
			)

			return err
		}
	}
}
