package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kutbudev/todoflow/internal/analytics"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/pkg/models"
)

// Client talks to the todoflowd /v1 API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("API error (status %d, field %s): %s", e.StatusCode, e.Field, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Request performs a raw call and returns the response body.
func (c *Client) Request(method, endpoint string, body interface{}) ([]byte, error) {
	return c.makeRequest(method, endpoint, body)
}

// makeRequest makes an HTTP request and returns the response body
func (c *Client) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var payload struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			apiErr.Message, apiErr.Field = payload.Error, payload.Field
		}
		return nil, apiErr
	}

	return respBody, nil
}

func (c *Client) do(method, endpoint string, body, out interface{}) error {
	respBody, err := c.makeRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func todoPath(id uint, suffix string) string {
	return "/todos/" + strconv.FormatUint(uint64(id), 10) + suffix
}

// ListParams are the list/export query filters. Zero values are omitted.
type ListParams struct {
	Skip             int
	Limit            int
	Search           string
	Completed        *bool
	Status           string
	Priority         string
	Category         string
	IncludeArchived  bool
	IncludeTemplates bool
	SortBy           string
	SortOrder        string
	UserID           *uint
}

// Values encodes p as a query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Skip > 0 {
		v.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("search", p.Search)
	set("status", p.Status)
	set("priority", p.Priority)
	set("category", p.Category)
	set("sort_by", p.SortBy)
	set("sort_order", p.SortOrder)
	if p.Completed != nil {
		v.Set("completed", strconv.FormatBool(*p.Completed))
	}
	if p.IncludeArchived {
		v.Set("include_archived", "true")
	}
	if p.IncludeTemplates {
		v.Set("include_templates", "true")
	}
	if p.UserID != nil {
		v.Set("user_id", strconv.FormatUint(uint64(*p.UserID), 10))
	}
	return v
}

func withQuery(endpoint string, v url.Values) string {
	if len(v) == 0 {
		return endpoint
	}
	return endpoint + "?" + v.Encode()
}

// Todo API methods

func (c *Client) ListTodos(p ListParams) ([]models.Todo, error) {
	var todos []models.Todo
	err := c.do(http.MethodGet, withQuery("/todos", p.Values()), nil, &todos)
	return todos, err
}

func (c *Client) GetTodo(id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(http.MethodGet, todoPath(id, ""), nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo posts fields as the request body; "title" is required.
func (c *Client) CreateTodo(fields map[string]interface{}) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(http.MethodPost, "/todos", fields, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo sends a partial update; a nil value clears the field.
func (c *Client) UpdateTodo(id uint, fields map[string]interface{}) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(http.MethodPut, todoPath(id, ""), fields, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) DeleteTodo(id uint) error {
	return c.do(http.MethodDelete, todoPath(id, ""), nil, nil)
}

func (c *Client) todoAction(id uint, suffix string) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(http.MethodPost, todoPath(id, suffix), nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) StartTimer(id uint) (*models.Todo, error) {
	return c.todoAction(id, "/timer/start")
}

func (c *Client) StopTimer(id uint) (*models.Todo, error) {
	return c.todoAction(id, "/timer/stop")
}

func (c *Client) TimerStatus(id uint) (*service.TimerState, error) {
	var state service.TimerState
	if err := c.do(http.MethodGet, todoPath(id, "/timer"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) CompletePomodoro(id uint) (*models.Todo, error) {
	return c.todoAction(id, "/pomodoro")
}

func (c *Client) CreateRecurring(id uint) (*models.Todo, error) {
	return c.todoAction(id, "/recurring")
}

func (c *Client) Suggestions(id uint) ([]service.Suggestion, error) {
	var resp struct {
		Suggestions []service.Suggestion `json:"suggestions"`
	}
	if err := c.do(http.MethodGet, todoPath(id, "/suggestions"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func (c *Client) AddComment(id uint, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(http.MethodPost, todoPath(id, "/comments"), map[string]string{"content": content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Template API methods

func (c *Client) MakeTemplate(id uint, name string) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(http.MethodPost, todoPath(id, "/template"), map[string]string{"name": name}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) ListTemplates() ([]models.Todo, error) {
	var todos []models.Todo
	err := c.do(http.MethodGet, "/templates", nil, &todos)
	return todos, err
}

// InstantiateTemplate creates a todo from a template; empty title and due
// keep the template's values.
func (c *Client) InstantiateTemplate(id uint, title, due string) (*models.Todo, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	if due != "" {
		body["due_date"] = due
	}
	var todo models.Todo
	endpoint := "/templates/" + strconv.FormatUint(uint64(id), 10) + "/instantiate"
	if err := c.do(http.MethodPost, endpoint, body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Bulk runs one of complete, archive or delete over ids.
func (c *Client) Bulk(action string, ids []uint) (*service.BulkResult, error) {
	switch action {
	case "complete", "archive", "delete":
	default:
		return nil, fmt.Errorf("unknown bulk action %q", action)
	}
	var result service.BulkResult
	if err := c.do(http.MethodPost, "/bulk/"+action, map[string][]uint{"todo_ids": ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report API methods

func userQuery(userID *uint) url.Values {
	v := url.Values{}
	if userID != nil {
		v.Set("user_id", strconv.FormatUint(uint64(*userID), 10))
	}
	return v
}

func (c *Client) Stats(userID *uint) (*analytics.Stats, error) {
	var stats analytics.Stats
	if err := c.do(http.MethodGet, withQuery("/stats", userQuery(userID)), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Trends(days int, userID *uint) (*analytics.Trends, error) {
	v := userQuery(userID)
	v.Set("days", strconv.Itoa(days))
	var trends analytics.Trends
	if err := c.do(http.MethodGet, withQuery("/stats/trends", v), nil, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// Export downloads the filtered todos in format (json, csv or ics).
func (c *Client) Export(format string, p ListParams) ([]byte, error) {
	v := p.Values()
	v.Set("format", format)
	return c.makeRequest(http.MethodGet, withQuery("/export", v), nil)
}

// Health checks the server root /health endpoint.
func (c *Client) Health() error {
	root := strings.TrimSuffix(c.BaseURL, "/v1")
	resp, err := c.HTTPClient.Get(root + "/health")
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", root, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "server unhealthy"}
	}
	return nil
}
