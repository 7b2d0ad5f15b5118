package handler

import (
	"github.com/deppfellow/go-todo/internal/model"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/internal/service"
	"github.com/deppfellow/go-todo/internal/validation"
	"github.com/labstack/echo/v4"
)

// titleRequired is reported for a title that is empty after trimming.
var titleRequired = validation.CustomValidationErrors{
	{Field: "title", Message: "is required"},
}

type ListTodosRequest struct{}

func (r *ListTodosRequest) Validate() error {
	return nil
}

type GetTodoRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *GetTodoRequest) Validate() error {
	return nil
}

type CreateTodoRequest struct {
	Title     string `json:"title" validate:"required"`
	Completed *bool  `json:"completed"`
}

func (r *CreateTodoRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if validation.Blank(r.Title) {
		return titleRequired
	}
	return nil
}

// UpdateTodoRequest is a partial update: absent or null fields are left as stored.
type UpdateTodoRequest struct {
	ID        int64   `param:"id" json:"-"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func (r *UpdateTodoRequest) Validate() error {
	if r.Title != nil && validation.Blank(*r.Title) {
		return titleRequired
	}
	return nil
}

type DeleteTodoRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *DeleteTodoRequest) Validate() error {
	return nil
}

type DeleteTodoResponse struct {
	Message string      `json:"message"`
	Todo    *model.Todo `json:"todo"`
}

type TodoHandler struct {
	Handler
	todoService *service.TodoService
}

func NewTodoHandler(s *server.Server, todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{
		Handler:     NewHandler(s),
		todoService: todoService,
	}
}

func (h *TodoHandler) ListTodos(c echo.Context, _ *ListTodosRequest) ([]model.Todo, error) {
	return h.todoService.ListTodos(c.Request().Context())
}

func (h *TodoHandler) GetTodo(c echo.Context, req *GetTodoRequest) (*model.Todo, error) {
	return h.todoService.GetTodo(c.Request().Context(), req.ID)
}

func (h *TodoHandler) CreateTodo(c echo.Context, req *CreateTodoRequest) (*model.Todo, error) {
	return h.todoService.CreateTodo(c.Request().Context(), req.Title, req.Completed)
}

func (h *TodoHandler) UpdateTodo(c echo.Context, req *UpdateTodoRequest) (*model.Todo, error) {
	return h.todoService.UpdateTodo(c.Request().Context(), req.ID, model.TodoPatch{
		Title:     req.Title,
		Completed: req.Completed,
	})
}

func (h *TodoHandler) DeleteTodo(c echo.Context, req *DeleteTodoRequest) (*DeleteTodoResponse, error) {
	todo, err := h.todoService.DeleteTodo(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteTodoResponse{
		Message: "Todo deleted",
		Todo:    todo,
	}, nil
}
