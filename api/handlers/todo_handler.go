package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/pkg/models"
)

// ListTodosQuery binds the list and export filters.
type ListTodosQuery struct {
	Skip             int    `form:"skip" binding:"min=0"`
	Limit            int    `form:"limit,default=100" binding:"min=0,max=1000"`
	Search           string `form:"search"`
	Completed        *bool  `form:"completed"`
	Status           string `form:"status"`
	Priority         string `form:"priority"`
	Category         string `form:"category"`
	IncludeArchived  bool   `form:"include_archived"`
	IncludeTemplates bool   `form:"include_templates"`
	SortBy           string `form:"sort_by"`
	SortOrder        string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	UserID           *uint  `form:"user_id"`
}

func (q ListTodosQuery) filter() (service.ListFilter, error) {
	f := service.ListFilter{
		Skip:             q.Skip,
		Limit:            q.Limit,
		Search:           q.Search,
		Completed:        q.Completed,
		Category:         q.Category,
		IncludeArchived:  q.IncludeArchived,
		IncludeTemplates: q.IncludeTemplates,
		SortOrder:        q.SortOrder,
		UserID:           q.UserID,
	}
	if q.Status != "" {
		st, err := NormalizeStatus("status", q.Status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if q.Priority != "" {
		p, err := NormalizePriority("priority", q.Priority)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}
	sortBy, err := service.ParseSortField(q.SortBy)
	if err != nil {
		return f, err
	}
	f.SortBy = sortBy
	return f, nil
}

// CreateTodoRequest DTO for creating a todo
type CreateTodoRequest struct {
	Title             string              `json:"title" binding:"required,max=200"`
	Description       *string             `json:"description"`
	Status            string              `json:"status"`
	Priority          string              `json:"priority"`
	DueDate           *FlexTime           `json:"due_date"`
	CategoryID        *uint               `json:"category_id"`
	EstimatedDuration *int                `json:"estimated_duration" binding:"omitempty,min=0"`
	Notes             *string             `json:"notes"`
	ParentID          *uint               `json:"parent_id"`
	Position          int                 `json:"position"`
	RecurrencePattern string              `json:"recurrence_pattern"`
	RecurrenceEndDate *FlexTime           `json:"recurrence_end_date"`
	ReminderAt        *FlexTime           `json:"reminder_at"`
	PomodoroTarget    *int                `json:"pomodoro_target" binding:"omitempty,min=0"`
	Attachments       []models.Attachment `json:"attachments"`
	CreatedByID       *uint               `json:"created_by_id"`
	TagIDs            []uint              `json:"tag_ids"`
	AssigneeIDs       []uint              `json:"assignee_ids"`
	DependencyIDs     []uint              `json:"dependency_ids"`
}

func (r CreateTodoRequest) input() (service.CreateTodoInput, error) {
	in := service.CreateTodoInput{
		Title:             r.Title,
		Description:       r.Description,
		DueDate:           r.DueDate.Ptr(),
		CategoryID:        r.CategoryID,
		EstimatedDuration: r.EstimatedDuration,
		Notes:             r.Notes,
		ParentID:          r.ParentID,
		Position:          r.Position,
		RecurrenceEndDate: r.RecurrenceEndDate.Ptr(),
		ReminderAt:        r.ReminderAt.Ptr(),
		PomodoroTarget:    r.PomodoroTarget,
		Attachments:       r.Attachments,
		CreatedByID:       r.CreatedByID,
		TagIDs:            r.TagIDs,
		AssigneeIDs:       r.AssigneeIDs,
		DependencyIDs:     r.DependencyIDs,
	}
	var err error
	if in.Status, err = NormalizeStatus("status", r.Status); err != nil {
		return in, err
	}
	if in.Priority, err = NormalizePriority("priority", r.Priority); err != nil {
		return in, err
	}
	if in.RecurrencePattern, err = NormalizeRecurrence("recurrence_pattern", r.RecurrencePattern); err != nil {
		return in, err
	}
	return in, nil
}

// UpdateTodoRequest DTO for a partial update. A key that is present with a
// null value clears the field; an absent key leaves it alone.
type UpdateTodoRequest struct {
	Title             service.Optional[string]              `json:"title"`
	Description       service.Optional[*string]             `json:"description"`
	Status            service.Optional[string]              `json:"status"`
	Priority          service.Optional[string]              `json:"priority"`
	DueDate           service.Optional[*FlexTime]           `json:"due_date"`
	CategoryID        service.Optional[*uint]               `json:"category_id"`
	IsArchived        service.Optional[bool]                `json:"is_archived"`
	EstimatedDuration service.Optional[*int]                `json:"estimated_duration"`
	ActualDuration    service.Optional[*int]                `json:"actual_duration"`
	Notes             service.Optional[*string]             `json:"notes"`
	ParentID          service.Optional[*uint]               `json:"parent_id"`
	Position          service.Optional[int]                 `json:"position"`
	RecurrencePattern service.Optional[string]              `json:"recurrence_pattern"`
	RecurrenceEndDate service.Optional[*FlexTime]           `json:"recurrence_end_date"`
	ReminderAt        service.Optional[*FlexTime]           `json:"reminder_at"`
	PomodoroTarget    service.Optional[*int]                `json:"pomodoro_target"`
	Attachments       service.Optional[[]models.Attachment] `json:"attachments"`
	CompletedAt       service.Optional[*FlexTime]           `json:"completed_at"`
	TagIDs            service.Optional[[]uint]              `json:"tag_ids"`
	AssigneeIDs       service.Optional[[]uint]              `json:"assignee_ids"`
	DependencyIDs     service.Optional[[]uint]              `json:"dependency_ids"`
	UserID            *uint                                 `json:"user_id"`
}

func (r UpdateTodoRequest) patch() (service.TodoPatch, error) {
	p := service.TodoPatch{
		Title:             r.Title,
		Description:       r.Description,
		DueDate:           optionalTime(r.DueDate),
		CategoryID:        r.CategoryID,
		IsArchived:        r.IsArchived,
		EstimatedDuration: r.EstimatedDuration,
		ActualDuration:    r.ActualDuration,
		Notes:             r.Notes,
		ParentID:          r.ParentID,
		Position:          r.Position,
		RecurrenceEndDate: optionalTime(r.RecurrenceEndDate),
		ReminderAt:        optionalTime(r.ReminderAt),
		PomodoroTarget:    r.PomodoroTarget,
		Attachments:       r.Attachments,
		CompletedAt:       optionalTime(r.CompletedAt),
		TagIDs:            r.TagIDs,
		AssigneeIDs:       r.AssigneeIDs,
		DependencyIDs:     r.DependencyIDs,
		UserID:            r.UserID,
	}
	if r.Status.Set {
		st, err := models.ParseStatus(r.Status.Value)
		if err != nil {
			return p, service.Invalid("status", "unknown status %q", r.Status.Value)
		}
		p.Status = service.Some(st)
	}
	if r.Priority.Set {
		pr, err := models.ParsePriority(r.Priority.Value)
		if err != nil {
			return p, service.Invalid("priority", "unknown priority %q", r.Priority.Value)
		}
		p.Priority = service.Some(pr)
	}
	if r.RecurrencePattern.Set {
		rp, err := NormalizeRecurrence("recurrence_pattern", r.RecurrencePattern.Value)
		if err != nil {
			return p, err
		}
		p.RecurrencePattern = service.Some(rp)
	}
	return p, nil
}

// actorRequest carries the optional acting user for state-changing calls.
type actorRequest struct {
	UserID *uint `json:"user_id"`
}

// bindActor reads an optional {"user_id": n} body; an empty body is fine.
func bindActor(c *gin.Context) (*uint, bool) {
	if c.Request.ContentLength == 0 {
		return queryUserID(c)
	}
	var req actorRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	return req.UserID, true
}

// ListTodos returns top-level todos matching the query filters.
func (h *Handler) ListTodos(c *gin.Context) {
	var q ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		h.respondError(c, err)
		return
	}
	todos, err := h.svc.ListTodos(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodo creates a new todo.
func (h *Handler) CreateTodo(c *gin.Context) {
	var req CreateTodoRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		h.respondError(c, err)
		return
	}
	todo, err := h.svc.CreateTodo(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// GetTodo returns a todo with its full relationship graph.
func (h *Handler) GetTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	todo, err := h.svc.GetTodo(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo applies a partial update.
func (h *Handler) UpdateTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTodoRequest
	if !bindJSON(c, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.respondError(c, err)
		return
	}
	todo, err := h.svc.UpdateTodo(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes a todo, its comments and its relationship rows.
func (h *Handler) DeleteTodo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := queryUserID(c)
	if !ok {
		return
	}
	if _, err := h.svc.DeleteTodo(c.Request.Context(), id, userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

// Suggestions returns heuristic hints for a todo.
func (h *Handler) Suggestions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	suggestions, err := h.svc.Suggestions(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo_id": id, "suggestions": suggestions})
}
