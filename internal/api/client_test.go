package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]interface{}
}

func newTestClient(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.query = r.Method, r.URL.Path, r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/v1/", "tf_key"), rec
}

func TestListTodos(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[{"id":1,"title":"a","status":"pending"}]`)

	done := false
	todos, err := c.ListTodos(ListParams{Status: "pending", Completed: &done, Limit: 20})
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, models.StatusPending, todos[0].Status)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/v1/todos", rec.path)
	assert.Equal(t, "completed=false&limit=20&status=pending", rec.query)
	assert.Equal(t, "Bearer tf_key", rec.auth)
}

func TestCreateTodo(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"id":5,"title":"Ship"}`)

	todo, err := c.CreateTodo(map[string]interface{}{"title": "Ship", "priority": "high"})
	require.NoError(t, err)
	assert.Equal(t, uint(5), todo.ID)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "high", rec.body["priority"])
}

func TestUpdateTodoSendsNulls(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"id":5,"title":"Ship"}`)

	_, err := c.UpdateTodo(5, map[string]interface{}{"due_date": nil})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/v1/todos/5", rec.path)
	v, present := rec.body["due_date"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest, `{"error":"title: is required","field":"title"}`)

	_, err := c.CreateTodo(map[string]interface{}{"title": ""})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "title", apiErr.Field)
	assert.False(t, IsNotFound(err))

	c, _ = newTestClient(t, http.StatusNotFound, `{"error":"todo 9: not found"}`)
	_, err = c.GetTodo(9)
	assert.True(t, IsNotFound(err))
}

func TestBulk(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"requested":3,"matched":2}`)

	result, err := c.Bulk("complete", []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, "/v1/bulk/complete", rec.path)
	assert.Len(t, rec.body["todo_ids"], 3)

	_, err = c.Bulk("explode", []uint{1})
	assert.Error(t, err)
}

func TestSuggestions(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"todo_id":3,"suggestions":[{"type":"warning","message":"overdue"}]}`)

	suggestions, err := c.Suggestions(3)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "warning", suggestions[0].Type)
	assert.Equal(t, "/v1/todos/3/suggestions", rec.path)
}

func TestExport(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, "id,title\n1,a\n")

	data, err := c.Export("csv", ListParams{Search: "a"})
	require.NoError(t, err)
	assert.Equal(t, "id,title\n1,a\n", string(data))
	assert.Equal(t, "format=csv&search=a", rec.query)
}

func TestHealth(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"status":"ok"}`)

	require.NoError(t, c.Health())
	assert.Equal(t, "/health", rec.path)
}
