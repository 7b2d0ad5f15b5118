package service

import (
	"github.com/deppfellow/go-todo/internal/repository"
	"github.com/deppfellow/go-todo/internal/server"
)

type Services struct {
	Todo *TodoService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Todo: NewTodoService(s, repos.Todo),
	}
}
