package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the documentation viewer page. The page itself
// loads /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := static.FS.ReadFile("openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}
