package service

import (
	"context"
	"strings"

	"github.com/deppfellow/go-todo/internal/model"
	"github.com/deppfellow/go-todo/internal/repository"
	"github.com/deppfellow/go-todo/internal/server"
)

type TodoService struct {
	server   *server.Server
	todoRepo *repository.TodoRepository
}

func NewTodoService(s *server.Server, todoRepo *repository.TodoRepository) *TodoService {
	return &TodoService{
		server:   s,
		todoRepo: todoRepo,
	}
}

func (s *TodoService) ListTodos(ctx context.Context) ([]model.Todo, error) {
	return s.todoRepo.List(ctx)
}

func (s *TodoService) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	return s.todoRepo.Get(ctx, id)
}

// CreateTodo stores a todo with a trimmed title. A nil completed means false.
func (s *TodoService) CreateTodo(ctx context.Context, title string, completed *bool) (*model.Todo, error) {
	done := false
	if completed != nil {
		done = *completed
	}

	todo, err := s.todoRepo.Create(ctx, strings.TrimSpace(title), done)
	if err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Str("event", "todo_created").
		Int64("todo_id", todo.ID).
		Msg("todo created")

	return todo, nil
}

// UpdateTodo applies patch to an existing todo. A provided title is trimmed;
// nil fields leave the stored value untouched.
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}

	return s.todoRepo.Update(ctx, id, patch)
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) (*model.Todo, error) {
	todo, err := s.todoRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Str("event", "todo_deleted").
		Int64("todo_id", todo.ID).
		Msg("todo deleted")

	return todo, nil
}
