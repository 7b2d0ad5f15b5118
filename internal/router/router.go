// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/deppfellow/go-todo/internal/handler"
	"github.com/deppfellow/go-todo/internal/middleware"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain,
// the system routes and the todo API.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id feeds the context logger, and New Relic
	// must start the transaction before anything reads it.
	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.RecordRequests(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, s, h)

	todos := router.Group("/api/todos")
	todos.GET("", handler.Handle(h.Todo.Handler, h.Todo.ListTodos, http.StatusOK))
	todos.POST("", handler.Handle(h.Todo.Handler, h.Todo.CreateTodo, http.StatusCreated))
	todos.GET("/:id", handler.Handle(h.Todo.Handler, h.Todo.GetTodo, http.StatusOK))
	todos.PUT("/:id", handler.Handle(h.Todo.Handler, h.Todo.UpdateTodo, http.StatusOK))
	todos.DELETE("/:id", handler.Handle(h.Todo.Handler, h.Todo.DeleteTodo, http.StatusOK))

	return router
}
