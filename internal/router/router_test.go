package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/deppfellow/go-todo/internal/config"
	"github.com/deppfellow/go-todo/internal/database"
	"github.com/deppfellow/go-todo/internal/errs"
	"github.com/deppfellow/go-todo/internal/handler"
	"github.com/deppfellow/go-todo/internal/lib/metrics"
	"github.com/deppfellow/go-todo/internal/model"
	"github.com/deppfellow/go-todo/internal/repository"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/deppfellow/go-todo/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoColumns = []string{"id", "title", "completed"}

const (
	selectAll = "SELECT id, title, completed FROM todos ORDER BY id"
	insertOne = "INSERT INTO todos (title, completed) VALUES ($1, $2) RETURNING id, title, completed"
	updateOne = "UPDATE todos SET title = COALESCE($1, title), completed = COALESCE($2, completed) WHERE id = $3 RETURNING id, title, completed"
	deleteOne = "DELETE FROM todos WHERE id = $1 RETURNING id, title, completed"
	selectOne = "SELECT id, title, completed FROM todos WHERE id = $1"
)

func setupRouter(t *testing.T) (*echo.Echo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	log := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				Port:               "8080",
				CORSAllowedOrigins: []string{"*"},
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:  &log,
		DB:      database.NewWithPool(mock, &log),
		Metrics: metrics.New(config.ServiceName),
	}

	repos := repository.NewRepositories(s)
	services := service.NewServices(s, repos)
	handlers := handler.NewHandlers(s, services)

	return NewRouter(s, handlers), mock
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	e, _ := setupRouter(t)

	rec := do(e, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectPing()

		rec := do(e, http.MethodGet, "/status", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[handler.StatusResponse](t, rec)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"].Status)
	})

	t.Run("database down", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := do(e, http.MethodGet, "/status", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode[handler.StatusResponse](t, rec)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "connection refused", body.Checks["database"].Error)
	})
}

func TestListTodos(t *testing.T) {
	t.Run("empty table is an empty array", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectAll)).WillReturnRows(pgxmock.NewRows(todoColumns))

		rec := do(e, http.MethodGet, "/api/todos", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("database error is a 500 with the driver message", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectAll)).
			WillReturnError(errors.New(`relation "todos" does not exist`))

		rec := do(e, http.MethodGet, "/api/todos", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, `relation "todos" does not exist`, decode[errs.HTTPError](t, rec).Message)
	})
}

func TestCreateTodo(t *testing.T) {
	t.Run("blank title is rejected", func(t *testing.T) {
		e, _ := setupRouter(t)

		rec := do(e, http.MethodPost, "/api/todos", `{"title":"  "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errs.HTTPError](t, rec)
		assert.Equal(t, "Title is required", body.Message)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "title", body.Errors[0].Field)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		e, _ := setupRouter(t)

		rec := do(e, http.MethodPost, "/api/todos", `{"completed":true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Title is required", decode[errs.HTTPError](t, rec).Message)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		e, _ := setupRouter(t)

		rec := do(e, http.MethodPost, "/api/todos", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created with defaults", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectQuery(regexp.QuoteMeta(insertOne)).
			WithArgs("Buy milk", false).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(1), "Buy milk", false))

		rec := do(e, http.MethodPost, "/api/todos", `{"title":"  Buy milk "}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		todo := decode[model.Todo](t, rec)
		assert.Equal(t, "Buy milk", todo.Title)
		assert.False(t, todo.Completed)
		assert.Equal(t, int64(1), todo.ID)
	})
}

func TestUpdateTodo(t *testing.T) {
	t.Run("unknown id is not found", func(t *testing.T) {
		e, mock := setupRouter(t)
		title := "Anything"
		mock.ExpectQuery(regexp.QuoteMeta(updateOne)).
			WithArgs(&title, (*bool)(nil), int64(9999)).
			WillReturnError(pgx.ErrNoRows)

		rec := do(e, http.MethodPut, "/api/todos/9999", `{"title":"Anything"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Todo not found", decode[errs.HTTPError](t, rec).Message)
	})

	t.Run("completed only leaves title unchanged", func(t *testing.T) {
		e, mock := setupRouter(t)
		completed := true
		mock.ExpectQuery(regexp.QuoteMeta(updateOne)).
			WithArgs((*string)(nil), &completed, int64(1)).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(1), "Buy milk", true))

		rec := do(e, http.MethodPut, "/api/todos/1", `{"completed":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		todo := decode[model.Todo](t, rec)
		assert.Equal(t, "Buy milk", todo.Title)
		assert.True(t, todo.Completed)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		e, _ := setupRouter(t)

		rec := do(e, http.MethodPut, "/api/todos/1", `{"title":" "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body id does not override the path id", func(t *testing.T) {
		e, mock := setupRouter(t)
		completed := false
		mock.ExpectQuery(regexp.QuoteMeta(updateOne)).
			WithArgs((*string)(nil), &completed, int64(2)).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(2), "Walk dog", false))

		rec := do(e, http.MethodPut, "/api/todos/2", `{"id":5,"completed":false}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(2), decode[model.Todo](t, rec).ID)
	})

	t.Run("non numeric id is rejected", func(t *testing.T) {
		e, _ := setupRouter(t)

		rec := do(e, http.MethodPut, "/api/todos/abc", `{"completed":true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetTodo(t *testing.T) {
	e, mock := setupRouter(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectOne)).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(3), "Read book", false))
	mock.ExpectQuery(regexp.QuoteMeta(selectOne)).
		WithArgs(int64(4)).
		WillReturnError(pgx.ErrNoRows)

	rec := do(e, http.MethodGet, "/api/todos/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Read book", decode[model.Todo](t, rec).Title)

	rec = do(e, http.MethodGet, "/api/todos/4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTodo(t *testing.T) {
	t.Run("deleted todo disappears from the list", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectQuery(regexp.QuoteMeta(deleteOne)).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(1), "Buy milk", false))
		mock.ExpectQuery(regexp.QuoteMeta(selectAll)).
			WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(2), "Walk dog", false))

		rec := do(e, http.MethodDelete, "/api/todos/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"message":"Todo deleted","todo":{"id":1,"title":"Buy milk","completed":false}}`,
			rec.Body.String())

		rec = do(e, http.MethodGet, "/api/todos", "")
		require.Equal(t, http.StatusOK, rec.Code)
		todos := decode[[]model.Todo](t, rec)
		require.Len(t, todos, 1)
		assert.NotEqual(t, int64(1), todos[0].ID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		e, mock := setupRouter(t)
		mock.ExpectQuery(regexp.QuoteMeta(deleteOne)).
			WithArgs(int64(9999)).
			WillReturnError(pgx.ErrNoRows)

		rec := do(e, http.MethodDelete, "/api/todos/9999", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Todo not found", decode[errs.HTTPError](t, rec).Message)
	})
}

func TestListAfterTwoInserts(t *testing.T) {
	e, mock := setupRouter(t)
	mock.ExpectQuery(regexp.QuoteMeta(insertOne)).
		WithArgs("First", false).
		WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(1), "First", false))
	mock.ExpectQuery(regexp.QuoteMeta(insertOne)).
		WithArgs("Second", true).
		WillReturnRows(pgxmock.NewRows(todoColumns).AddRow(int64(2), "Second", true))
	mock.ExpectQuery(regexp.QuoteMeta(selectAll)).
		WillReturnRows(pgxmock.NewRows(todoColumns).
			AddRow(int64(1), "First", false).
			AddRow(int64(2), "Second", true))

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/todos", `{"title":"First"}`).Code)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/api/todos", `{"title":"Second","completed":true}`).Code)

	rec := do(e, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.Todo{
		{ID: 1, Title: "First", Completed: false},
		{ID: 2, Title: "Second", Completed: true},
	}, decode[[]model.Todo](t, rec))
}

func TestSystemRoutes(t *testing.T) {
	e, _ := setupRouter(t)

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `todo_http_requests_total{method="GET",route="/health"`)

	rec = do(e, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	rec = do(e, http.MethodGet, "/static/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi"`)

	rec = do(e, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)
}
