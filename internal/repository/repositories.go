package repository

import (
	"github.com/deppfellow/go-todo/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Todo *TodoRepository
}

// NewRepositories constructs the repository container on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Todo: NewTodoRepository(s.DB.Pool),
	}
}
