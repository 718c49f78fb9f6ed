package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/pkg/models"
)

// todoAction is the shape shared by the single-todo state transitions.
type todoAction func(c *gin.Context, id uint, userID *uint) (*models.Todo, error)

func (h *Handler) runAction(c *gin.Context, action todoAction) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := bindActor(c)
	if !ok {
		return
	}
	todo, err := action(c, id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// StartTimer starts the time tracker on a todo.
func (h *Handler) StartTimer(c *gin.Context) {
	h.runAction(c, func(c *gin.Context, id uint, userID *uint) (*models.Todo, error) {
		return h.svc.StartTimer(c.Request.Context(), id, userID)
	})
}

// StopTimer stops a running timer and records the interval.
func (h *Handler) StopTimer(c *gin.Context) {
	h.runAction(c, func(c *gin.Context, id uint, userID *uint) (*models.Todo, error) {
		return h.svc.StopTimer(c.Request.Context(), id, userID)
	})
}

// TimerStatus reports the current timer state.
func (h *Handler) TimerStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	state, err := h.svc.TimerStatus(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CompletePomodoro increments the pomodoro counter.
func (h *Handler) CompletePomodoro(c *gin.Context) {
	h.runAction(c, func(c *gin.Context, id uint, userID *uint) (*models.Todo, error) {
		return h.svc.CompletePomodoro(c.Request.Context(), id, userID)
	})
}

// CreateRecurring creates the next occurrence of a recurring todo.
func (h *Handler) CreateRecurring(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := bindActor(c)
	if !ok {
		return
	}
	todo, err := h.svc.CreateRecurringInstance(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// MakeTemplateRequest DTO for flagging a todo as a template
type MakeTemplateRequest struct {
	Name   string `json:"name" binding:"max=100"`
	UserID *uint  `json:"user_id"`
}

// MakeTemplate marks a todo as a reusable template.
func (h *Handler) MakeTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req MakeTemplateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	todo, err := h.svc.MakeTemplate(c.Request.Context(), id, req.Name, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// ListTemplates returns every template.
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// InstantiateRequest DTO for creating a todo from a template
type InstantiateRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=200"`
	DueDate     *FlexTime `json:"due_date"`
	CreatedByID *uint     `json:"created_by_id"`
}

// InstantiateTemplate creates a fresh todo from a template.
func (h *Handler) InstantiateTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req InstantiateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	todo, err := h.svc.CreateFromTemplate(c.Request.Context(), id, service.InstantiateInput{
		Title:       req.Title,
		DueDate:     req.DueDate.Ptr(),
		CreatedByID: req.CreatedByID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// CreateCommentRequest DTO for adding a comment
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	UserID  *uint  `json:"user_id"`
}

// ListComments returns the comments on a todo, oldest first.
func (h *Handler) ListComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	comments, err := h.svc.ListComments(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment to a todo.
func (h *Handler) CreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), id, req.UserID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment.
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// ListActivity returns the activity log of a todo, newest first.
func (h *Handler) ListActivity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	entries, err := h.svc.ListActivity(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
