package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	todoapi "github.com/kutbudev/todoflow/api"
	"github.com/kutbudev/todoflow/internal/api"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/internal/testutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSession starts a todoflow API on httptest and connects an in-memory
// MCP client to a server backed by it.
func newSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	svc, err := service.New(testutil.NewTestDB(t), service.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	router, err := todoapi.NewRouter(todoapi.Options{
		Service: svc,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	server, err := NewServer(api.NewClient(srv.URL+"/v1", ""))
	require.NoError(t, err)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]interface{}) (map[string]interface{}, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	if res.IsError {
		return map[string]interface{}{"error": text.Text}, true
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out), text.Text)
	return out, false
}

func TestListTools(t *testing.T) {
	cs := newSession(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_todos", "get_todo", "create_todo", "update_todo", "complete_todo", "todo_stats", "suggest",
	}, names)
}

func TestTodoLifecycle(t *testing.T) {
	cs := newSession(t)

	out, isErr := call(t, cs, "create_todo", map[string]interface{}{
		"title":    "Write docs",
		"priority": "high",
		"due_date": "2024-05-09",
	})
	require.False(t, isErr, out)
	todo := out["todo"].(map[string]interface{})
	id := todo["id"]
	assert.Equal(t, "high", todo["priority"])

	out, isErr = call(t, cs, "suggest", map[string]interface{}{"id": id})
	require.False(t, isErr, out)
	assert.EqualValues(t, 2, out["count"])

	out, isErr = call(t, cs, "update_todo", map[string]interface{}{"id": id, "due_date": ""})
	require.False(t, isErr, out)
	assert.Nil(t, out["todo"].(map[string]interface{})["due_date"])

	out, isErr = call(t, cs, "complete_todo", map[string]interface{}{"id": id})
	require.False(t, isErr, out)
	assert.Equal(t, "completed", out["todo"].(map[string]interface{})["status"])

	out, isErr = call(t, cs, "list_todos", map[string]interface{}{"completed": true})
	require.False(t, isErr, out)
	assert.EqualValues(t, 1, out["count"])

	out, isErr = call(t, cs, "todo_stats", map[string]interface{}{})
	require.False(t, isErr, out)
	assert.EqualValues(t, 1, out["completed"])
}

func TestToolErrors(t *testing.T) {
	cs := newSession(t)

	out, isErr := call(t, cs, "create_todo", map[string]interface{}{"title": "  "})
	assert.True(t, isErr)
	assert.Contains(t, out["error"], "title")

	out, isErr = call(t, cs, "get_todo", map[string]interface{}{"id": 404})
	assert.True(t, isErr)
	assert.Contains(t, out["error"], "404")

	_, isErr = call(t, cs, "update_todo", map[string]interface{}{"id": 1})
	assert.True(t, isErr)
}
