package handler

import (
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/internal/service"
)

// Handlers groups every HTTP handler so router setup receives one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Todo    *TodoHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Todo:    NewTodoHandler(s, services.Todo),
	}
}
