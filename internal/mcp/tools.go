package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolset struct {
	client *api.Client
}

func boolPtr(b bool) *bool {
	return &b
}

func registerTools(server *mcp.Server, t *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_todos",
		Description: "List top-level todos. Optional filters: search, status, priority, category, completed, limit (default 50).",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Todos",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.handleListTodos)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_todo",
		Description: "Get one todo with subtasks, tags, comments, dependencies and dependents.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Todo",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.handleGetTodo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_todo",
		Description: "Create a todo. REQUIRED: title. Optional: description, priority, due_date, category_id, estimated_duration (minutes), parent_id.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Create Todo",
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, t.handleCreateTodo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_todo",
		Description: "Update fields of a todo. Only the fields you pass change. Pass due_date as an empty string to clear it.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Update Todo",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, t.handleUpdateTodo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_todo",
		Description: "Mark a todo completed. completed_at is stamped by the server.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Complete Todo",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, t.handleCompleteTodo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "todo_stats",
		Description: "Totals by status, priority and category, overdue and due-today counts, completion rate and streak.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Todo Statistics",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.handleStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest",
		Description: "Heuristic suggestions for a todo: overdue warning, missing estimate, unfinished dependencies, large estimate.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Suggest",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.handleSuggest)
}

type ListTodosInput struct {
	Search    string `json:"search,omitempty" jsonschema:"case-insensitive text matched against title and description"`
	Status    string `json:"status,omitempty" jsonschema:"pending, in_progress, completed or cancelled"`
	Priority  string `json:"priority,omitempty" jsonschema:"low, medium, high or urgent"`
	Category  string `json:"category,omitempty" jsonschema:"category name"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"only completed (true) or not completed (false) todos"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of todos, default 50"`
}

func (t *toolset) handleListTodos(ctx context.Context, req *mcp.CallToolRequest, input ListTodosInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	todos, err := t.client.ListTodos(api.ListParams{
		Search:    strings.TrimSpace(input.Search),
		Status:    input.Status,
		Priority:  input.Priority,
		Category:  input.Category,
		Completed: input.Completed,
		Limit:     limit,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(todos), nil
}

type TodoIDInput struct {
	ID uint `json:"id" jsonschema:"todo id"`
}

func (in TodoIDInput) validate() error {
	if in.ID == 0 {
		return errors.New("'id' is required")
	}
	return nil
}

func (t *toolset) handleGetTodo(ctx context.Context, req *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}
	todo, err := t.client.GetTodo(input.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(todo), nil
}

type CreateTodoInput struct {
	Title             string `json:"title" jsonschema:"short title, at most 200 characters"`
	Description       string `json:"description,omitempty"`
	Priority          string `json:"priority,omitempty" jsonschema:"low, medium (default), high or urgent"`
	DueDate           string `json:"due_date,omitempty" jsonschema:"YYYY-MM-DD or RFC 3339"`
	CategoryID        uint   `json:"category_id,omitempty"`
	EstimatedDuration int    `json:"estimated_duration,omitempty" jsonschema:"estimate in minutes"`
	ParentID          uint   `json:"parent_id,omitempty" jsonschema:"make this a subtask of the given todo"`
}

func (t *toolset) handleCreateTodo(ctx context.Context, req *mcp.CallToolRequest, input CreateTodoInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, nil, errors.New("'title' is required")
	}

	fields := map[string]interface{}{"title": title}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.Priority != "" {
		fields["priority"] = input.Priority
	}
	if input.DueDate != "" {
		fields["due_date"] = input.DueDate
	}
	if input.CategoryID != 0 {
		fields["category_id"] = input.CategoryID
	}
	if input.EstimatedDuration > 0 {
		fields["estimated_duration"] = input.EstimatedDuration
	}
	if input.ParentID != 0 {
		fields["parent_id"] = input.ParentID
	}

	todo, err := t.client.CreateTodo(fields)
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]interface{}{
		"todo":     todo,
		"_message": "Todo created: " + todo.Title,
	}, nil
}

type UpdateTodoInput struct {
	ID          uint    `json:"id" jsonschema:"todo id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty" jsonschema:"YYYY-MM-DD, RFC 3339, or empty to clear"`
	Notes       *string `json:"notes,omitempty"`
}

func (in UpdateTodoInput) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("title", in.Title)
	set("description", in.Description)
	set("status", in.Status)
	set("priority", in.Priority)
	set("notes", in.Notes)
	if in.DueDate != nil {
		if *in.DueDate == "" {
			fields["due_date"] = nil
		} else {
			fields["due_date"] = *in.DueDate
		}
	}
	return fields
}

func (t *toolset) handleUpdateTodo(ctx context.Context, req *mcp.CallToolRequest, input UpdateTodoInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	if input.ID == 0 {
		return nil, nil, errors.New("'id' is required")
	}
	fields := input.fields()
	if len(fields) == 0 {
		return nil, nil, errors.New("nothing to update: pass at least one field")
	}
	todo, err := t.client.UpdateTodo(input.ID, fields)
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]interface{}{"todo": todo}, nil
}

func (t *toolset) handleCompleteTodo(ctx context.Context, req *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}
	todo, err := t.client.UpdateTodo(input.ID, map[string]interface{}{"status": "completed"})
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]interface{}{
		"todo":     todo,
		"_message": "Completed: " + todo.Title,
	}, nil
}

type StatsInput struct {
	UserID uint `json:"user_id,omitempty" jsonschema:"limit to todos created by or assigned to this user"`
}

func (t *toolset) handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	var userID *uint
	if input.UserID != 0 {
		userID = &input.UserID
	}
	stats, err := t.client.Stats(userID)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(stats), nil
}

func (t *toolset) handleSuggest(ctx context.Context, req *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, map[string]interface{}, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}
	suggestions, err := t.client.Suggestions(input.ID)
	if err != nil {
		return nil, nil, err
	}
	out := wrapResultAsObject(suggestions)
	out["todo_id"] = input.ID
	return nil, out, nil
}
