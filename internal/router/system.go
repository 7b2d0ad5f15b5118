package router

import (
	"github.com/deppfellow/go-todo/internal/handler"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that sit outside the todo API:
// probes, metrics and documentation.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/health", h.Health.Health)
	r.GET("/status", h.Health.CheckHealth)

	if s.Metrics != nil {
		r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	r.StaticFS("/static", static.FS)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
