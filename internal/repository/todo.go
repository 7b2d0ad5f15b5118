package repository

import (
	"context"

	"github.com/deppfellow/go-todo/internal/database"
	"github.com/deppfellow/go-todo/internal/model"
	"github.com/deppfellow/go-todo/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const todosTable = "todos"

const (
	listTodosQuery = `SELECT id, title, completed FROM todos ORDER BY id`

	getTodoQuery = `SELECT id, title, completed FROM todos WHERE id = $1`

	createTodoQuery = `INSERT INTO todos (title, completed) VALUES ($1, $2) RETURNING id, title, completed`

	// COALESCE keeps the stored value for every parameter passed as NULL.
	updateTodoQuery = `UPDATE todos SET title = COALESCE($1, title), completed = COALESCE($2, completed) WHERE id = $3 RETURNING id, title, completed`

	deleteTodoQuery = `DELETE FROM todos WHERE id = $1 RETURNING id, title, completed`
)

// TodoRepository runs the SQL behind the todo endpoints.
// Every method is a single statement; errors are tagged with the table
// name and otherwise returned as the driver produced them.
type TodoRepository struct {
	pool database.Pool
}

func NewTodoRepository(pool database.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func scanTodo(row pgx.CollectableRow) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Completed)
	return t, err
}

// List returns every todo ordered by id. It never returns a nil slice.
func (r *TodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.pool.Query(ctx, listTodosQuery)
	if err != nil {
		return nil, sqlerr.WithTable(todosTable, err)
	}

	todos, err := pgx.CollectRows(rows, scanTodo)
	if err != nil {
		return nil, sqlerr.WithTable(todosTable, err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Get returns the todo with the given id, or a wrapped pgx.ErrNoRows.
func (r *TodoRepository) Get(ctx context.Context, id int64) (*model.Todo, error) {
	return r.queryOne(ctx, getTodoQuery, id)
}

// Create inserts a todo and returns the stored row.
func (r *TodoRepository) Create(ctx context.Context, title string, completed bool) (*model.Todo, error) {
	return r.queryOne(ctx, createTodoQuery, title, completed)
}

// Update applies patch to the todo with the given id and returns the stored row.
func (r *TodoRepository) Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	return r.queryOne(ctx, updateTodoQuery, patch.Title, patch.Completed, id)
}

// Delete removes the todo with the given id and returns the removed row.
func (r *TodoRepository) Delete(ctx context.Context, id int64) (*model.Todo, error) {
	return r.queryOne(ctx, deleteTodoQuery, id)
}

func (r *TodoRepository) queryOne(ctx context.Context, query string, args ...any) (*model.Todo, error) {
	var t model.Todo
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Title, &t.Completed); err != nil {
		return nil, sqlerr.WithTable(todosTable, err)
	}
	return &t, nil
}
