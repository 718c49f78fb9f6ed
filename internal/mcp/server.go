package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

const instructions = `todoflow - task management

Use these tools to read and change the user's todo list:
- list_todos to find work (filter by status, priority, category or search text)
- get_todo for the full record including subtasks, comments and dependencies
- create_todo / update_todo / complete_todo to change it
- todo_stats for totals, overdue counts and the completion streak
- suggest for hints about a single todo (overdue, missing estimate, blocked)

Priorities: low, medium, high, urgent. Statuses: pending, in_progress, completed, cancelled.
Dates accept YYYY-MM-DD or RFC 3339.`

// NewServer builds an MCP server whose tools call the todoflow API through client.
func NewServer(client *api.Client) (*mcp.Server, error) {
	if client == nil {
		return nil, errors.New("api client is required")
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "todoflow",
			Version: Version,
		},
		&mcp.ServerOptions{Instructions: instructions},
	)
	registerTools(server, &toolset{client: client})
	return server, nil
}

// ServeStdio starts the MCP server over stdio and blocks until the client disconnects.
func ServeStdio(ctx context.Context, client *api.Client) error {
	server, err := NewServer(client)
	if err != nil {
		return err
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}

// wrapResultAsObject ensures the result is always an object (not array or null),
// since tool output must be a JSON record.
func wrapResultAsObject(result interface{}) map[string]interface{} {
	if result == nil {
		return map[string]interface{}{"items": []interface{}{}, "count": 0}
	}

	b, err := json.Marshal(result)
	if err != nil {
		return map[string]interface{}{"data": result}
	}

	if len(b) > 0 && b[0] == '[' {
		var arr []interface{}
		if err := json.Unmarshal(b, &arr); err == nil {
			if arr == nil {
				arr = []interface{}{}
			}
			return map[string]interface{}{"items": arr, "count": len(arr)}
		}
	}

	if len(b) > 0 && b[0] == '{' {
		var obj map[string]interface{}
		if err := json.Unmarshal(b, &obj); err == nil {
			return obj
		}
	}

	return map[string]interface{}{"data": result}
}

// ToolDefinitions lists the registered tools by running a throwaway server
// over an in-memory transport. No API calls are made.
func ToolDefinitions(ctx context.Context) ([]*mcp.Tool, error) {
	server, err := NewServer(api.NewClient("", ""))
	if err != nil {
		return nil, err
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, err
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "todoflow-cli", Version: Version}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, err
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}
